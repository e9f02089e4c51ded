package store

const schema = `
-- Local copy of the collection's review log. The review id is the
-- epoch-millisecond timestamp Anki assigns, unique within a deck and
-- monotonically increasing, which is what incremental sync keys on.
CREATE TABLE IF NOT EXISTS reviews (
    id            INTEGER NOT NULL,
    deck          TEXT NOT NULL,
    card_id       INTEGER NOT NULL,
    rating        INTEGER NOT NULL,
    new_interval  INTEGER NOT NULL,
    last_interval INTEGER NOT NULL,
    ease_after    INTEGER NOT NULL,

    PRIMARY KEY (deck, id)
);

CREATE INDEX IF NOT EXISTS idx_reviews_deck_id ON reviews(deck, id);
`
