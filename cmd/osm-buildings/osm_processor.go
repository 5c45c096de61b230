package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/qedus/osmpbf"
)

// LevelHeight is the assumed height of one building level in metres
const LevelHeight = 3.0

// Building is a footprint extracted from an OSM way
type Building struct {
	ID        string
	Footprint orb.Ring
	Elevation float64
	Height    float64
}

// OSMProcessor extracts building footprints from an OSM PBF file
type OSMProcessor struct {
	Buildings      []Building
	ProcessedNodes map[int64]orb.Point

	bound *orb.Bound
	limit int
}

// NewOSMProcessor creates a processor. A nil bound keeps every building; a
// limit of zero means no limit.
func NewOSMProcessor(bound *orb.Bound, limit int) *OSMProcessor {
	return &OSMProcessor{
		Buildings:      make([]Building, 0),
		ProcessedNodes: make(map[int64]orb.Point),
		bound:          bound,
		limit:          limit,
	}
}

// ProcessOSMFile reads nodes in a first pass and building ways in a second
func (p *OSMProcessor) ProcessOSMFile(osmFilePath string) error {
	log.Printf("Processing OSM file: %s", osmFilePath)

	file, err := os.Open(osmFilePath)
	if err != nil {
		return fmt.Errorf("failed to open OSM file: %w", err)
	}
	defer file.Close()

	log.Println("First pass: collecting nodes...")
	if err := p.collectNodes(newDecoder(file)); err != nil {
		return err
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind OSM file: %w", err)
	}

	log.Println("Second pass: processing buildings...")
	if err := p.processBuildings(newDecoder(file)); err != nil {
		return err
	}

	log.Printf("Processing complete. Found %d buildings.", len(p.Buildings))
	return nil
}

func newDecoder(r io.Reader) *osmpbf.Decoder {
	decoder := osmpbf.NewDecoder(r)
	decoder.SetBufferSize(osmpbf.MaxBlobSize)
	// Use all available CPU cores
	decoder.Start(runtime.GOMAXPROCS(-1))
	return decoder
}

func (p *OSMProcessor) collectNodes(decoder *osmpbf.Decoder) error {
	var nodeCount int

	for {
		obj, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("error decoding OSM data: %w", err)
		}

		if node, ok := obj.(*osmpbf.Node); ok {
			p.ProcessedNodes[node.ID] = orb.Point{node.Lon, node.Lat}
			nodeCount++

			if nodeCount%1000000 == 0 {
				log.Printf("Processed %d nodes...", nodeCount)
			}
		}
	}

	log.Printf("Collected %d nodes", nodeCount)
	return nil
}

func (p *OSMProcessor) processBuildings(decoder *osmpbf.Decoder) error {
	for {
		obj, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("error decoding OSM data: %w", err)
		}

		way, ok := obj.(*osmpbf.Way)
		if !ok {
			continue
		}
		if tag, ok := way.Tags["building"]; !ok || tag == "no" {
			continue
		}

		if building, ok := p.processBuilding(way.ID, way.NodeIDs, way.Tags); ok {
			p.Buildings = append(p.Buildings, building)
			if len(p.Buildings)%10000 == 0 {
				log.Printf("Processed %d buildings...", len(p.Buildings))
			}
			if p.limit > 0 && len(p.Buildings) >= p.limit {
				log.Printf("Reached limit of %d buildings", p.limit)
				return nil
			}
		}
	}

	return nil
}

// processBuilding resolves one way into a footprint with a vertical span
func (p *OSMProcessor) processBuilding(id int64, nodeIDs []int64, tags map[string]string) (Building, bool) {
	if len(nodeIDs) < 3 {
		return Building{}, false
	}

	ring := make(orb.Ring, 0, len(nodeIDs)+1)
	for _, nodeID := range nodeIDs {
		point, exists := p.ProcessedNodes[nodeID]
		if !exists {
			// Partially clipped extract
			return Building{}, false
		}
		ring = append(ring, point)
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	if len(ring) < 4 || planar.Area(ring) == 0 {
		return Building{}, false
	}

	if p.bound != nil && !p.bound.Intersects(ring.Bound()) {
		return Building{}, false
	}

	elevation, height := verticalSpan(tags)
	if height <= 0 {
		return Building{}, false
	}

	return Building{
		ID:        "way/" + strconv.FormatInt(id, 10),
		Footprint: ring,
		Elevation: elevation,
		Height:    height,
	}, true
}

// verticalSpan derives the base and extent of a building from its tags.
// OSM height is measured from the ground, so the extent is height - min_height.
func verticalSpan(tags map[string]string) (elevation, height float64) {
	if v, ok := parseMetres(tags["min_height"]); ok {
		elevation = v
	} else if l, err := strconv.Atoi(tags["building:min_level"]); err == nil && l > 0 {
		elevation = float64(l) * LevelHeight
	}

	top := LevelHeight
	if v, ok := parseMetres(tags["height"]); ok && v > 0 {
		top = v
	} else if l, err := strconv.Atoi(tags["building:levels"]); err == nil && l > 0 {
		top = float64(l) * LevelHeight
	}

	return elevation, top - elevation
}

// parseMetres accepts plain numbers and an optional " m" suffix
func parseMetres(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "m"))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
