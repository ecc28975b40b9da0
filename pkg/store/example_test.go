package store_test

import (
	"context"
	"fmt"
	"time"

	"github.com/aquastore/aquastore/pkg/connectors"
	"github.com/aquastore/aquastore/pkg/series"
	"github.com/aquastore/aquastore/pkg/store"
)

func Example() {
	ctx := context.Background()

	st, err := store.New("demo", connectors.NewMemory("demo"), store.Options{})
	if err != nil {
		panic(err)
	}
	defer st.Close()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	timestamps := make([]time.Time, 10)
	values := make([]float64, 10)
	for i := range timestamps {
		timestamps[i] = start.AddDate(0, 0, i)
		values[i] = float64(i)
	}
	obs, err := series.New("well_a", timestamps, values)
	if err != nil {
		panic(err)
	}

	if err := st.AddOseries(ctx, obs, series.Metadata{
		series.MetaX: 120.0, series.MetaY: 450.0,
	}, false); err != nil {
		panic(err)
	}

	names, err := st.OseriesNames(ctx)
	if err != nil {
		panic(err)
	}
	fmt.Println(names)
	// Output: [well_a]
}
