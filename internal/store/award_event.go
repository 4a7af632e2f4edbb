package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendAward(ctx context.Context, data AwardEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	var missionID, category sql.NullString
	if data.MissionID != nil {
		missionID = sql.NullString{String: *data.MissionID, Valid: true}
	}
	if data.Category != nil {
		category = sql.NullString{String: *data.Category, Valid: true}
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(AwardEventsTable.Name).
		Columns("sequence", "timestamp", "dispatch_id", "kind", "mission_id", "category", "xp", "level").
		Values(seqNum, time.Now().UTC(), data.DispatchID, data.Kind, missionID, category, data.XP, data.Level).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save award event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryAwards(ctx context.Context, opts QueryOpts) ([]AwardEventRecord, error) {
	selector := entsql.Dialect(dialect.SQLite).
		Select("sequence", "timestamp", "dispatch_id", "kind", "mission_id", "category", "xp", "level").
		From(entsql.Table(AwardEventsTable.Name)).
		OrderBy(entsql.Desc("sequence"))

	if opts.Limit > 0 {
		selector = selector.Limit(opts.Limit)
	}
	if opts.After > 0 {
		selector = selector.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		selector = selector.Where(entsql.LT("sequence", opts.Before))
	}
	if opts.Kind != "" {
		selector = selector.Where(entsql.EQ("kind", opts.Kind))
	}
	if !opts.From.IsZero() {
		selector = selector.Where(entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		selector = selector.Where(entsql.LTE("timestamp", opts.To.UTC()))
	}

	query, args := selector.Query()
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query award events: %w", err)
	}
	defer rows.Close()

	var records []AwardEventRecord
	for rows.Next() {
		var (
			rec               AwardEventRecord
			missionID, catStr sql.NullString
		)
		if err := rows.Scan(&rec.Sequence, &rec.Timestamp, &rec.DispatchID, &rec.Kind,
			&missionID, &catStr, &rec.XP, &rec.Level); err != nil {
			return nil, fmt.Errorf("scan award event: %w", err)
		}
		rec.MissionID = missionID.String
		rec.Category = catStr.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate award events: %w", err)
	}
	return records, nil
}
