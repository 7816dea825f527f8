package db

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"cv-rag/internal/config"
)

// CVDocument is one ingested resume file. Immutable after creation.
type CVDocument struct {
	bun.BaseModel `bun:"table:cv_documents,alias:cd"`

	ID         string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Filename   string    `bun:"filename,notnull"`
	FilePath   string    `bun:"file_path,notnull"`
	TotalPages int       `bun:"total_pages,notnull"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// CVChunk is one embedded passage of a document.
type CVChunk struct {
	bun.BaseModel `bun:"table:cv_chunks,alias:cc"`

	ID         string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	DocumentID string    `bun:"document_id,notnull,type:uuid"`
	Content    string    `bun:"content,notnull"`
	PageNumber int       `bun:"page_number,notnull"`
	ChunkIndex int       `bun:"chunk_index,notnull"`
	Embedding  []float32 `bun:"embedding,notnull,type:vector(1536)"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func ConnectDB(cfg *config.DBConfig) (*sql.DB, error) {
	dsn := cfg.URL + "?sslmode=disable"
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.Key))), nil
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

func InitDB(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*CVDocument)(nil)).IfNotExists().Exec(ctx); err != nil {
		return err
	}
	_, err := db.NewCreateTable().Model((*CVChunk)(nil)).IfNotExists().Exec(ctx)
	return err
}

// drop both tables
func DropTables(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewDropTable().Model((*CVChunk)(nil)).IfExists().Exec(ctx); err != nil {
		return err
	}
	_, err := db.NewDropTable().Model((*CVDocument)(nil)).IfExists().Exec(ctx)
	return err
}
