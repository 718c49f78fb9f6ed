package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// CategoryTime is one row of the time-by-category report.
type CategoryTime struct {
	Category  string  `db:"category" json:"category"`
	Color     string  `db:"color" json:"color"`
	TodoCount int     `db:"todo_count" json:"todo_count"`
	Minutes   int     `db:"minutes" json:"minutes"`
	Hours     float64 `db:"-" json:"hours"`
}

// HeatmapCell counts completions for a weekday (0 = Sunday) and hour pair.
type HeatmapCell struct {
	Weekday int `json:"weekday"`
	Hour    int `json:"hour"`
	Count   int `json:"count"`
}

// Reporter runs read-only aggregate queries on the connection pool shared
// with gorm.
type Reporter struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

// NewReporter wraps the *sql.DB underneath db.
func NewReporter(db *gorm.DB) (*Reporter, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}

	dialect := db.Dialector.Name()
	sb := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if dialect == "postgres" {
		sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}

	return &Reporter{db: sqlx.NewDb(sqlDB, dialect), sb: sb}, nil
}

// userScope matches todos created by or assigned to userID.
func userScope(userID uint) sq.Sqlizer {
	return sq.Or{
		sq.Eq{"t.created_by_id": userID},
		sq.Expr("t.id IN (SELECT todo_id FROM todo_assignees WHERE user_id = ?)", userID),
	}
}

// TimeByCategory sums tracked minutes per category. Todos without a
// category are grouped under "Uncategorized".
func (r *Reporter) TimeByCategory(ctx context.Context, userID *uint) ([]CategoryTime, error) {
	q := r.sb.
		Select(
			"COALESCE(c.name, 'Uncategorized') AS category",
			"COALESCE(c.color, '') AS color",
			"COUNT(t.id) AS todo_count",
			"COALESCE(SUM(t.actual_duration), 0) AS minutes",
		).
		From("todos t").
		LeftJoin("categories c ON c.id = t.category_id").
		Where(sq.NotEq{"t.actual_duration": nil}).
		Where(sq.Eq{"t.is_template": false}).
		GroupBy("c.name", "c.color").
		OrderBy("minutes DESC", "category ASC")
	if userID != nil {
		q = q.Where(userScope(*userID))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build time by category query: %w", err)
	}

	rows := []CategoryTime{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("time by category: %w", err)
	}
	for i := range rows {
		rows[i].Hours = math.Round(float64(rows[i].Minutes)/60*100) / 100
	}
	return rows, nil
}

// CompletionHeatmap counts completions since the given instant by weekday and
// hour in since's location. Only non-empty cells are returned, ordered by
// weekday then hour.
func (r *Reporter) CompletionHeatmap(ctx context.Context, since time.Time, userID *uint) ([]HeatmapCell, error) {
	q := r.sb.
		Select("t.completed_at").
		From("todos t").
		Where(sq.NotEq{"t.completed_at": nil})
	if userID != nil {
		q = q.Where(userScope(*userID))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build heatmap query: %w", err)
	}

	var completions []time.Time
	if err := r.db.SelectContext(ctx, &completions, query, args...); err != nil {
		return nil, fmt.Errorf("completion heatmap: %w", err)
	}

	var grid [7][24]int
	loc := since.Location()
	for _, c := range completions {
		if c.Before(since) {
			continue
		}
		local := c.In(loc)
		grid[local.Weekday()][local.Hour()]++
	}

	cells := []HeatmapCell{}
	for d := 0; d < 7; d++ {
		for h := 0; h < 24; h++ {
			if grid[d][h] > 0 {
				cells = append(cells, HeatmapCell{Weekday: d, Hour: h, Count: grid[d][h]})
			}
		}
	}
	return cells, nil
}
