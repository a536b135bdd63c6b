package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE jobs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				type TEXT NOT NULL,
				status TEXT NOT NULL,
				data TEXT NOT NULL,
				progress INTEGER NOT NULL,
				process_id TEXT
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_jobs_status ON jobs (status)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE job_logs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				job_id INTEGER REFERENCES jobs (id) NOT NULL,
				level TEXT NOT NULL,
				message TEXT NOT NULL,
				data TEXT,
				stack_trace TEXT
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_job_logs_job_id ON job_logs (job_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE libraries (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				deleted_at TIMESTAMPTZ,
				name TEXT NOT NULL,
				root_path TEXT NOT NULL,
				scan_deep BOOLEAN NOT NULL DEFAULT FALSE,
				force_modified_time BOOLEAN NOT NULL DEFAULT FALSE,
				convert_to_cbz BOOLEAN NOT NULL DEFAULT FALSE,
				import_comic_info BOOLEAN NOT NULL DEFAULT TRUE,
				import_epub BOOLEAN NOT NULL DEFAULT TRUE,
				import_isbn BOOLEAN NOT NULL DEFAULT TRUE,
				delete_empty_read_lists BOOLEAN NOT NULL DEFAULT TRUE,
				delete_empty_collections BOOLEAN NOT NULL DEFAULT TRUE
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_libraries_name ON libraries (name COLLATE NOCASE) WHERE deleted_at IS NULL`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE series (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				library_id INTEGER REFERENCES libraries (id) NOT NULL,
				url TEXT NOT NULL,
				name TEXT NOT NULL,
				file_last_modified TIMESTAMPTZ NOT NULL,
				thumbnail BLOB
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_series_library_id_url ON series (library_id, url)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_series_library_id ON series (library_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE series_metadata (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				series_id INTEGER REFERENCES series (id) NOT NULL,
				title TEXT NOT NULL,
				title_lock BOOLEAN NOT NULL DEFAULT FALSE,
				title_sort TEXT NOT NULL,
				title_sort_lock BOOLEAN NOT NULL DEFAULT FALSE,
				summary TEXT NOT NULL DEFAULT '',
				summary_lock BOOLEAN NOT NULL DEFAULT FALSE,
				status TEXT NOT NULL DEFAULT 'ongoing',
				status_lock BOOLEAN NOT NULL DEFAULT FALSE,
				publisher TEXT NOT NULL DEFAULT '',
				publisher_lock BOOLEAN NOT NULL DEFAULT FALSE,
				language TEXT NOT NULL DEFAULT '',
				language_lock BOOLEAN NOT NULL DEFAULT FALSE,
				genres TEXT NOT NULL DEFAULT '[]',
				genres_lock BOOLEAN NOT NULL DEFAULT FALSE,
				tags TEXT NOT NULL DEFAULT '[]',
				tags_lock BOOLEAN NOT NULL DEFAULT FALSE,
				age_rating INTEGER,
				age_rating_lock BOOLEAN NOT NULL DEFAULT FALSE,
				total_book_count INTEGER,
				total_book_count_lock BOOLEAN NOT NULL DEFAULT FALSE
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_series_metadata_series_id ON series_metadata (series_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE books (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				library_id INTEGER REFERENCES libraries (id) NOT NULL,
				series_id INTEGER REFERENCES series (id) NOT NULL,
				url TEXT NOT NULL,
				name TEXT NOT NULL,
				number INTEGER NOT NULL DEFAULT 0,
				file_last_modified TIMESTAMPTZ NOT NULL,
				file_size_bytes INTEGER NOT NULL
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_books_url ON books (url)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_books_library_id ON books (library_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_books_series_id ON books (series_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE book_metadata (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				book_id INTEGER REFERENCES books (id) NOT NULL,
				title TEXT NOT NULL,
				title_lock BOOLEAN NOT NULL DEFAULT FALSE,
				summary TEXT NOT NULL DEFAULT '',
				summary_lock BOOLEAN NOT NULL DEFAULT FALSE,
				number TEXT NOT NULL DEFAULT '',
				number_lock BOOLEAN NOT NULL DEFAULT FALSE,
				number_sort REAL NOT NULL DEFAULT 0,
				number_sort_lock BOOLEAN NOT NULL DEFAULT FALSE,
				release_date TIMESTAMPTZ,
				release_date_lock BOOLEAN NOT NULL DEFAULT FALSE,
				authors TEXT NOT NULL DEFAULT '[]',
				authors_lock BOOLEAN NOT NULL DEFAULT FALSE,
				tags TEXT NOT NULL DEFAULT '[]',
				tags_lock BOOLEAN NOT NULL DEFAULT FALSE,
				isbn TEXT NOT NULL DEFAULT '',
				isbn_lock BOOLEAN NOT NULL DEFAULT FALSE
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_book_metadata_book_id ON book_metadata (book_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE media (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				book_id INTEGER REFERENCES books (id) NOT NULL,
				status TEXT NOT NULL DEFAULT 'outdated',
				media_type TEXT NOT NULL DEFAULT '',
				comment TEXT NOT NULL DEFAULT '',
				thumbnail BLOB
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_media_book_id ON media (book_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE media_pages (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				media_id INTEGER REFERENCES media (id) NOT NULL,
				number INTEGER NOT NULL,
				file_name TEXT NOT NULL,
				media_type TEXT NOT NULL,
				file_hash TEXT
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_media_pages_media_id ON media_pages (media_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE media_files (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				media_id INTEGER REFERENCES media (id) NOT NULL,
				file_name TEXT NOT NULL,
				media_type TEXT NOT NULL
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_media_files_media_id ON media_files (media_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE sidecars (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				library_id INTEGER REFERENCES libraries (id) NOT NULL,
				url TEXT NOT NULL,
				parent_url TEXT NOT NULL,
				kind TEXT NOT NULL,
				last_modified TIMESTAMPTZ NOT NULL
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_sidecars_library_id_url ON sidecars (library_id, url)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE read_lists (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL,
				summary TEXT NOT NULL DEFAULT ''
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_read_lists_name ON read_lists (name COLLATE NOCASE)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE read_list_books (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				read_list_id INTEGER REFERENCES read_lists (id) NOT NULL,
				book_id INTEGER REFERENCES books (id) NOT NULL,
				position INTEGER NOT NULL
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_read_list_books_read_list_id_book_id ON read_list_books (read_list_id, book_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE collections (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_collections_name ON collections (name COLLATE NOCASE)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE collection_series (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				collection_id INTEGER REFERENCES collections (id) NOT NULL,
				series_id INTEGER REFERENCES series (id) NOT NULL
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_collection_series_collection_id_series_id ON collection_series (collection_id, series_id)`)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		tables := []string{
			"collection_series",
			"collections",
			"read_list_books",
			"read_lists",
			"sidecars",
			"media_files",
			"media_pages",
			"media",
			"book_metadata",
			"books",
			"series_metadata",
			"series",
			"libraries",
			"job_logs",
			"jobs",
		}
		for _, table := range tables {
			_, err := db.Exec("DROP TABLE IF EXISTS " + table)
			if err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
