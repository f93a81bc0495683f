package models

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS gif (
	giphy_id VARCHAR(64) NOT NULL PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS gif_data (
	gif_id VARCHAR(64) NOT NULL,
	frame_nb INT NOT NULL,
	delay INT NOT NULL,
	frame MEDIUMTEXT NOT NULL,
	PRIMARY KEY (gif_id, frame_nb)
);`

// FrameStore keeps rendered terminal frames so a gif is only rendered once.
type FrameStore struct {
	db *sql.DB
}

// OpenFrameStore connects to mysql and creates the tables if needed.
func OpenFrameStore(ctx context.Context, dataSourceName string) (*FrameStore, error) {
	db, err := sql.Open("mysql", dataSourceName)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "could not reach database")
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "could not create tables")
	}
	return NewFrameStore(db), nil
}

func NewFrameStore(db *sql.DB) *FrameStore {
	return &FrameStore{db: db}
}

// DataSourceName builds a mysql dsn. multiStatements is needed for the schema.
func DataSourceName(user, pass, host string, port int, name string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&multiStatements=true", user, pass, host, port, name)
}

// Check if id already exist in database
func (s *FrameStore) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM gif WHERE giphy_id = ?", id).Scan(&count)
	if err != nil {
		return false, errors.WithStack(err)
	}
	return count > 0, nil
}

// Retrieve all images of a gif sorted by frame_nb, reversed if rev is set
func (s *FrameStore) Frames(ctx context.Context, id string, rev bool) ([]RenderedImg, error) {
	order := "ASC"
	if rev {
		order = "DESC"
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT delay, frame FROM gif_data WHERE gif_id = ? ORDER BY frame_nb %s", order), id)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	var imgs []RenderedImg
	for rows.Next() {
		var img RenderedImg
		if err := rows.Scan(&img.Delay, &img.Output); err != nil {
			return nil, errors.WithStack(err)
		}
		imgs = append(imgs, img)
	}
	return imgs, errors.WithStack(rows.Err())
}

// Save stores the frames of a gif in a single transaction.
func (s *FrameStore) Save(ctx context.Context, id string, frames []RenderedImg) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "INSERT INTO gif (giphy_id) VALUES (?)", id); err != nil {
		return errors.WithStack(err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO gif_data (gif_id, frame_nb, delay, frame) VALUES (?, ?, ?, ?)")
	if err != nil {
		return errors.WithStack(err)
	}
	defer stmt.Close()
	for i, frame := range frames {
		if _, err = stmt.ExecContext(ctx, id, i, frame.Delay, frame.Output); err != nil {
			return errors.WithStack(err)
		}
	}
	return errors.WithStack(tx.Commit())
}

func (s *FrameStore) Close() error {
	return s.db.Close()
}
