package sqlite

// The schema relies on "IF NOT EXISTS" clauses throughout, so applying it to an
// existing database is a harmless no-op; concurrent initialisations won't clash.
const schema = `
BEGIN TRANSACTION;

CREATE TABLE
	IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL
	);

CREATE TABLE
	IF NOT EXISTS recipes (
		id INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		ingredients TEXT NOT NULL,
		instructions TEXT NOT NULL,
		category TEXT NOT NULL,
		tags TEXT,
		image TEXT,
		FOREIGN KEY (user_id) REFERENCES users (id)
	);

CREATE TABLE
	IF NOT EXISTS favorites (
		user_id INTEGER NOT NULL,
		recipe_id INTEGER NOT NULL,
		PRIMARY KEY (user_id, recipe_id),
		FOREIGN KEY (user_id) REFERENCES users (id),
		FOREIGN KEY (recipe_id) REFERENCES recipes (id)
	);

CREATE TABLE
	IF NOT EXISTS comments (
		id INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL,
		recipe_id INTEGER NOT NULL,
		comment_text TEXT NOT NULL,
		created_at datetime NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users (id),
		FOREIGN KEY (recipe_id) REFERENCES recipes (id)
	);

CREATE INDEX IF NOT EXISTS idx_recipes_user_id ON recipes (user_id);
CREATE INDEX IF NOT EXISTS idx_recipes_category ON recipes (category);
CREATE INDEX IF NOT EXISTS idx_recipes_tags ON recipes (tags);
CREATE INDEX IF NOT EXISTS idx_favorites_user_id ON favorites (user_id);
CREATE INDEX IF NOT EXISTS idx_comments_recipe_id ON comments (recipe_id);

COMMIT;
`
