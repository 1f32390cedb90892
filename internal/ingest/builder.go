package ingest

import (
	"fmt"
	"log/slog"

	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

// BuildStats counts what happened to the rows of one feed.
type BuildStats struct {
	Rows    int `json:"rows"`
	Built   int `json:"built"`
	Dropped int `json:"dropped"`
}

// Builder assembles typed records from tokenized rows.
type Builder struct {
	aliases AliasTable
	logger  *slog.Logger
}

// NewBuilder creates a builder. A nil alias table selects DefaultAliases and
// a nil logger selects slog.Default.
func NewBuilder(aliases AliasTable, logger *slog.Logger) *Builder {
	if aliases == nil {
		aliases = DefaultAliases
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{aliases: aliases, logger: logger.With("component", "record_builder")}
}

func recordID(g domain.Granularity, region domain.Region, index int) string {
	return fmt.Sprintf("%s-%s-%d", g.IDPrefix(), region, index)
}

func (b *Builder) float(row domain.RawRow, f Field) *float64 {
	v, _ := b.aliases.Lookup(row, f)
	return CleanFloat(v)
}

func (b *Builder) integer(row domain.RawRow, f Field) *int64 {
	v, _ := b.aliases.Lookup(row, f)
	return CleanInt(v)
}

// BuildWeekly builds records from the rows of a weekly feed for region.
func BuildWeekly(rows []domain.RawRow, region domain.Region) ([]domain.WeeklyRecord, BuildStats) {
	return NewBuilder(nil, nil).Weekly(rows, region)
}

// BuildMonthly builds records from the rows of a monthly feed for region.
func BuildMonthly(rows []domain.RawRow, region domain.Region) ([]domain.MonthlyRecord, BuildStats) {
	return NewBuilder(nil, nil).Monthly(rows, region)
}
