package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"regexp"

	"happydash/domain/happiness"
	"happydash/internal/errors"
	"happydash/ports"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// observationRow mirrors one row of the observations table; missing values are NULL
type observationRow struct {
	Country      string          `db:"country"`
	Year         int             `db:"year"`
	Rank         sql.NullInt64   `db:"rank"`
	Score        sql.NullFloat64 `db:"score"`
	UpperWhisker sql.NullFloat64 `db:"upper_whisker"`
	LowerWhisker sql.NullFloat64 `db:"lower_whisker"`
	GDP          sql.NullFloat64 `db:"gdp_per_capita"`
	Social       sql.NullFloat64 `db:"social_support"`
	Health       sql.NullFloat64 `db:"healthy_life_expectancy"`
	Freedom      sql.NullFloat64 `db:"freedom"`
	Generosity   sql.NullFloat64 `db:"generosity"`
	Corruption   sql.NullFloat64 `db:"corruption"`
	Residual     sql.NullFloat64 `db:"residual"`
}

func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func toRow(o happiness.Observation) observationRow {
	row := observationRow{
		Country:      o.Country,
		Year:         o.Year,
		Score:        nullFloat(o.Score),
		UpperWhisker: nullFloat(o.UpperWhisker),
		LowerWhisker: nullFloat(o.LowerWhisker),
		GDP:          nullFloat(o.GDP),
		Social:       nullFloat(o.Social),
		Health:       nullFloat(o.Health),
		Freedom:      nullFloat(o.Freedom),
		Generosity:   nullFloat(o.Generosity),
		Corruption:   nullFloat(o.Corruption),
		Residual:     nullFloat(o.Residual),
	}
	if o.Rank > 0 {
		row.Rank = sql.NullInt64{Int64: int64(o.Rank), Valid: true}
	}
	return row
}

func (r observationRow) observation() happiness.Observation {
	o := happiness.Observation{
		Country:      r.Country,
		Year:         r.Year,
		Score:        floatOrNaN(r.Score),
		UpperWhisker: floatOrNaN(r.UpperWhisker),
		LowerWhisker: floatOrNaN(r.LowerWhisker),
		GDP:          floatOrNaN(r.GDP),
		Social:       floatOrNaN(r.Social),
		Health:       floatOrNaN(r.Health),
		Freedom:      floatOrNaN(r.Freedom),
		Generosity:   floatOrNaN(r.Generosity),
		Corruption:   floatOrNaN(r.Corruption),
		Residual:     floatOrNaN(r.Residual),
	}
	if r.Rank.Valid {
		o.Rank = int(r.Rank.Int64)
	}
	return o
}

// observationRepository reads and replaces the imported happiness observations
type observationRepository struct {
	db     *sqlx.DB
	table  string
	logger *zap.Logger
}

// NewObservationRepository creates a repository over table. The name is validated because
// it is interpolated into the queries.
func NewObservationRepository(db *sqlx.DB, table string, logger *zap.Logger) (ports.ObservationStore, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, errors.ConfigInvalid(fmt.Sprintf("invalid table name %q", table))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &observationRepository{db: db, table: table, logger: logger.Named("postgres")}, nil
}

// Location identifies the table without exposing connection credentials
func (r *observationRepository) Location() string {
	return "postgres:" + r.table
}

// Load reads every observation in (year, country) order
func (r *observationRepository) Load(ctx context.Context) (*happiness.Table, error) {
	query := fmt.Sprintf(`SELECT country, year, rank, score, upper_whisker, lower_whisker,
		gdp_per_capita, social_support, healthy_life_expectancy, freedom, generosity,
		corruption, residual
	FROM %s
	ORDER BY year, country`, r.table)

	var rows []observationRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.FetchError(r.Location(), errors.DatabaseError("failed to query observations", err))
	}

	observations := make([]happiness.Observation, len(rows))
	for i, row := range rows {
		observations[i] = row.observation()
	}
	r.logger.Info("observations loaded", zap.String("table", r.table), zap.Int("rows", len(observations)))
	return happiness.NewTable(observations), nil
}

// ReplaceAll swaps the table content for rows inside one transaction
func (r *observationRepository) ReplaceAll(ctx context.Context, rows []happiness.Observation) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.DatabaseError("failed to begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, r.table)); err != nil {
		return 0, errors.DatabaseError("failed to clear observations", err)
	}

	insert := fmt.Sprintf(`INSERT INTO %s (
		country, year, rank, score, upper_whisker, lower_whisker,
		gdp_per_capita, social_support, healthy_life_expectancy, freedom, generosity,
		corruption, residual
	) VALUES (
		:country, :year, :rank, :score, :upper_whisker, :lower_whisker,
		:gdp_per_capita, :social_support, :healthy_life_expectancy, :freedom, :generosity,
		:corruption, :residual
	)`, r.table)

	stmt, err := tx.PrepareNamedContext(ctx, insert)
	if err != nil {
		return 0, errors.DatabaseError("failed to prepare insert", err)
	}
	defer stmt.Close()

	for _, o := range rows {
		if _, err := stmt.ExecContext(ctx, toRow(o)); err != nil {
			return 0, errors.DatabaseError(fmt.Sprintf("failed to insert %s/%d", o.Country, o.Year), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.DatabaseError("failed to commit observations", err)
	}
	r.logger.Info("observations replaced", zap.String("table", r.table), zap.Int("rows", len(rows)))
	return len(rows), nil
}
