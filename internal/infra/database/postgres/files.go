package postgres

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/EgorLis/hashdrop/internal/domain"
)

var fileColumns = []string{"id", "file_name", "object_key", "download_count", "created_at", "updated_at"}

func (r *PGRepo) returning() string {
	return "RETURNING id, file_name, object_key, download_count, created_at, updated_at"
}

func scanFile(row pgx.Row) (domain.FileRecord, error) {
	var (
		out domain.FileRecord
		key string
	)
	if err := row.Scan(&out.ID, &out.DisplayName, &key, &out.DownloadCount, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return domain.FileRecord{}, err
	}
	out.ObjectKey = domain.ObjectKey(key)
	return out, nil
}

func (r *PGRepo) saveQuery(rec domain.FileRecord) sq.InsertBuilder {
	// Проигравший гонку коммит получает уже существующую строку: имя и счётчик не трогаем.
	return r.qb().Insert(r.table("files")).
		Columns("file_name", "object_key", "download_count").
		Values(rec.DisplayName, rec.ObjectKey.String(), rec.DownloadCount).
		Suffix("ON CONFLICT (object_key) DO UPDATE SET updated_at = now() " + r.returning())
}

// Save — upsert по object_key.
func (r *PGRepo) Save(ctx context.Context, rec domain.FileRecord) (domain.FileRecord, error) {
	sqlStr, args, err := r.saveQuery(rec).ToSql()
	if err != nil {
		return domain.FileRecord{}, err
	}
	r.logSQL("SaveFile", sqlStr, args)

	start := time.Now()
	out, err := scanFile(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		r.logger.Printf("SaveFile error after %s: %v", time.Since(start), err)
		return domain.FileRecord{}, err
	}
	r.logger.Printf("SaveFile ok in %s id=%d key=%s", time.Since(start), out.ID, out.ObjectKey)
	return out, nil
}

func (r *PGRepo) findQuery(key domain.ObjectKey) sq.SelectBuilder {
	return r.qb().Select(fileColumns...).
		From(r.table("files")).
		Where(sq.Eq{"object_key": key.String()}).
		Limit(1)
}

func (r *PGRepo) FindByObjectKey(ctx context.Context, key domain.ObjectKey) (domain.FileRecord, bool, error) {
	sqlStr, args, err := r.findQuery(key).ToSql()
	if err != nil {
		return domain.FileRecord{}, false, err
	}
	r.logSQL("FindFile", sqlStr, args)

	out, err := scanFile(r.pool.QueryRow(ctx, sqlStr, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.FileRecord{}, false, nil
	}
	if err != nil {
		r.logger.Printf("FindFile key=%s error: %v", key, err)
		return domain.FileRecord{}, false, err
	}
	return out, true, nil
}

func (r *PGRepo) incrementQuery(key domain.ObjectKey) sq.UpdateBuilder {
	return r.qb().Update(r.table("files")).
		Set("download_count", sq.Expr("download_count + 1")).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"object_key": key.String()}).
		Suffix(r.returning())
}

// IncrementDownloads — атомарный +1 одним UPDATE; false, если записи нет.
func (r *PGRepo) IncrementDownloads(ctx context.Context, key domain.ObjectKey) (domain.FileRecord, bool, error) {
	sqlStr, args, err := r.incrementQuery(key).ToSql()
	if err != nil {
		return domain.FileRecord{}, false, err
	}
	r.logSQL("IncrementDownloads", sqlStr, args)

	out, err := scanFile(r.pool.QueryRow(ctx, sqlStr, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.FileRecord{}, false, nil
	}
	if err != nil {
		r.logger.Printf("IncrementDownloads key=%s error: %v", key, err)
		return domain.FileRecord{}, false, err
	}
	return out, true, nil
}
