package search

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	CollectionStatsName = "xsearch/collection"
)

type collectionStats struct {
	keyword       attribute.KeyValue
	size          metric.Int64UpDownCounter
	insertedCount metric.Int64Counter
	removedCount  metric.Int64Counter
	queriedCount  metric.Int64Counter
}

func (stats *collectionStats) RecordInserted() {
	if stats == nil {
		return
	}
	stats.insertedCount.Add(context.Background(), 1, metric.WithAttributes(stats.keyword))
	stats.size.Add(context.Background(), 1, metric.WithAttributes(stats.keyword))
}

func (stats *collectionStats) RecordRemoved() {
	if stats == nil {
		return
	}
	stats.removedCount.Add(context.Background(), 1, metric.WithAttributes(stats.keyword))
	stats.size.Add(context.Background(), -1, metric.WithAttributes(stats.keyword))
}

func (stats *collectionStats) RecordQueried(mode SearchMode, found bool) {
	if stats == nil {
		return
	}
	as := attribute.NewSet(
		stats.keyword,
		attribute.String("xsearch.query.mode", mode.String()),
		attribute.Bool("xsearch.query.found", found),
	)
	stats.queriedCount.Add(context.Background(), 1, metric.WithAttributeSet(as))
}

func newCollectionStats(keyword string) *collectionStats {
	meterName := fmt.Sprintf("%s/%s", CollectionStatsName, keyword)
	return &collectionStats{
		keyword: attribute.String("xsearch.keyword", keyword),
		size: lo.Must[metric.Int64UpDownCounter](otel.Meter(meterName).
			Int64UpDownCounter(
				"xsearch.collection.size",
				metric.WithDescription("The number of records in the collection."),
			),
		),
		insertedCount: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"xsearch.collection.inserted",
				metric.WithDescription("The number of records added to the collection."),
			),
		),
		removedCount: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"xsearch.collection.removed",
				metric.WithDescription("The number of records removed from the collection."),
			),
		),
		queriedCount: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"xsearch.collection.queried",
				metric.WithDescription("The number of score and rank queries."),
			),
		),
	}
}
