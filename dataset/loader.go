package dataset

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/volfir1/EcoPulseBackend/models"
)

// RecordSource is the slice of the store the loader needs.
type RecordSource interface {
	FindAll(ctx context.Context, collection string) ([]models.MetricRecord, error)
}

// Loader builds fresh Table snapshots from one store collection.
type Loader struct {
	source     RecordSource
	collection string
	log        *logrus.Logger
}

func NewLoader(source RecordSource, collection string, log *logrus.Logger) *Loader {
	return &Loader{source: source, collection: collection, log: log}
}

// Load fetches every record of the collection and builds a table. A store
// failure propagates wrapped; there is no second retry layer here.
func (l *Loader) Load(ctx context.Context) (*Table, error) {
	records, err := l.source.FindAll(ctx, l.collection)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", l.collection, err)
	}

	table := New(records)
	l.log.WithFields(logrus.Fields{
		"collection": l.collection,
		"rows":       table.Len(),
		"columns":    len(table.Columns()),
	}).Debug("snapshot loaded")
	return table, nil
}
