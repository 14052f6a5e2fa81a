// Command gentrips generates a synthetic NYC taxi trip CSV for local runs
// and test fixtures. Pickups are drawn around a handful of hotspot centers
// per borough plus uniform background noise, so DBSCAN finds believable
// structure in the output.
//
// Usage:
//
//	go run ./cmd/gentrips -out nyc_taxi_with_coords.csv -rows 20000 -seed 42
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/tripgrid/taxi-hotspots/internal/domain"
)

var baseDate = time.Date(2016, time.March, 14, 0, 0, 0, 0, time.UTC)

// hotspot is a demand center pickups concentrate around.
type hotspot struct {
	borough string
	zone    string
	lat     float64
	lon     float64
	weight  int // relative share of trips
}

var hotspots = []hotspot{
	{borough: "Manhattan", zone: "Midtown", lat: 40.7549, lon: -73.9840, weight: 30},
	{borough: "Manhattan", zone: "East Village", lat: 40.7265, lon: -73.9815, weight: 15},
	{borough: "Manhattan", zone: "Upper East Side", lat: 40.7736, lon: -73.9566, weight: 15},
	{borough: "Brooklyn", zone: "Williamsburg", lat: 40.7081, lon: -73.9571, weight: 12},
	{borough: "Brooklyn", zone: "Downtown Brooklyn", lat: 40.6936, lon: -73.9852, weight: 8},
	{borough: "Queens", zone: "Astoria", lat: 40.7644, lon: -73.9235, weight: 8},
	{borough: "Queens", zone: "JFK Airport", lat: 40.6413, lon: -73.7781, weight: 7},
	{borough: "Bronx", zone: "Yankee Stadium", lat: 40.8296, lon: -73.9262, weight: 5},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "nyc_taxi_with_coords.csv", "output CSV path")
	rows := flag.Int("rows", 20000, "number of trip rows to generate")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	if *rows < 1 {
		return fmt.Errorf("-rows must be positive")
	}

	rng := rand.New(rand.NewSource(*seed))

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		domain.ColPickupTime, domain.ColDropoffTime,
		domain.ColPickupLat, domain.ColPickupLon,
		domain.ColDropoffLat, domain.ColDropoffLon,
		domain.ColBorough, domain.ColZone,
		domain.ColDistance, domain.ColFare,
	}
	if err := w.Write(header); err != nil {
		return err
	}

	totalWeight := 0
	for _, h := range hotspots {
		totalWeight += h.weight
	}

	for i := 0; i < *rows; i++ {
		if err := w.Write(generateRow(rng, totalWeight)); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	log.Printf("wrote %d trips to %s", *rows, *out)
	return nil
}

func generateRow(rng *rand.Rand, totalWeight int) []string {
	h := pickHotspot(rng, totalWeight)

	// Demand peaks morning and evening; 70% of trips fall in rush windows.
	hour := rng.Intn(24)
	if rng.Float64() < 0.7 {
		if rng.Float64() < 0.5 {
			hour = 7 + rng.Intn(3) // 07-09
		} else {
			hour = 17 + rng.Intn(3) // 17-19
		}
	}

	pickup := baseDate.Add(
		time.Duration(hour)*time.Hour +
			time.Duration(rng.Intn(60))*time.Minute +
			time.Duration(rng.Intn(60))*time.Second,
	)

	pickupLat := h.lat + rng.NormFloat64()*0.002
	pickupLon := h.lon + rng.NormFloat64()*0.002

	distance := 0.5 + rng.Float64()*9.5
	durationMin := distance*3 + rng.Float64()*10
	dropoff := pickup.Add(time.Duration(durationMin * float64(time.Minute))).Truncate(time.Second)

	dropoffLat := pickupLat + (rng.Float64()-0.5)*distance*0.02
	dropoffLon := pickupLon + (rng.Float64()-0.5)*distance*0.02

	fare := 2.5 + distance*2.5 + rng.Float64()*5

	return []string{
		pickup.Format("2006-01-02 15:04:05"),
		dropoff.Format("2006-01-02 15:04:05"),
		formatFloat(pickupLat),
		formatFloat(pickupLon),
		formatFloat(dropoffLat),
		formatFloat(dropoffLon),
		h.borough,
		h.zone,
		strconv.FormatFloat(distance, 'f', 2, 64),
		strconv.FormatFloat(fare, 'f', 2, 64),
	}
}

func pickHotspot(rng *rand.Rand, totalWeight int) hotspot {
	n := rng.Intn(totalWeight)
	for _, h := range hotspots {
		if n < h.weight {
			return h
		}
		n -= h.weight
	}
	return hotspots[len(hotspots)-1]
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
