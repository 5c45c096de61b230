// Command osm-buildings turns the building ways of an OSM PBF extract into a
// clash submit body, and can run the detection locally.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"buildingclash/internal/service/clash"

	"github.com/paulmach/orb"
)

func main() {
	var (
		bbox        string
		limit       int
		outputFile  string
		projection  string
		detect      bool
		concurrency int
	)

	flag.StringVar(&bbox, "bbox", "", "Bounding box filter: minLon,minLat,maxLon,maxLat")
	flag.IntVar(&limit, "limit", 0, "Maximum number of buildings to export (0 = no limit)")
	flag.StringVar(&outputFile, "out", "", "Output JSON file (default: stdout)")
	flag.StringVar(&projection, "projection", ProjectionNone, "Footprint projection: none, mercator or local")
	flag.BoolVar(&detect, "detect", false, "Run clash detection locally and output the report instead")
	flag.IntVar(&concurrency, "concurrency", 4, "Pair evaluation goroutines used with -detect")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <file.osm.pbf>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	bound, err := parseBBox(bbox)
	if err != nil {
		log.Fatalf("Invalid -bbox: %v", err)
	}

	processor := NewOSMProcessor(bound, limit)
	if err := processor.ProcessOSMFile(flag.Arg(0)); err != nil {
		log.Fatalf("Failed to process OSM file: %v", err)
	}

	body, err := BuildSubmitBody(processor.Buildings, projection)
	if err != nil {
		log.Fatalf("Failed to build submit body: %v", err)
	}

	if detect {
		report, err := clash.NewService(concurrency).Execute(body)
		if err != nil {
			log.Fatalf("Clash detection failed: %v", err)
		}
		if body, err = json.Marshal(report); err != nil {
			log.Fatalf("Failed to encode report: %v", err)
		}
		log.Printf("Found %d clashes", len(report.Features))
	}

	if err := writeOutput(outputFile, body); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
}

// parseBBox parses "minLon,minLat,maxLon,maxLat"; empty means no filter
func parseBBox(s string) (*orb.Bound, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("expected 4 comma separated values, got %d", len(parts))
	}

	var v [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i+1, err)
		}
		v[i] = f
	}
	if v[0] > v[2] || v[1] > v[3] {
		return nil, fmt.Errorf("min coordinates must be less than max coordinates")
	}

	return &orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}
