package gis

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const earthRadiusKm = 6371.0

// Site is one known piece of critical infrastructure.
type Site struct {
	Name string  `json:"name"`
	Kind string  `json:"kind"` // e.g. "hospital", "power plant", "dam"
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// NearbySite is a site annotated with its distance from a query point.
type NearbySite struct {
	Site
	DistanceKm float64 `json:"distance_km"`
}

// SiteIndex answers proximity queries over a fixed registry of
// critical-infrastructure sites using S2 spherical geometry.
type SiteIndex struct {
	sites  []Site
	points []s2.Point
}

func NewSiteIndex(sites []Site) *SiteIndex {
	idx := &SiteIndex{
		sites:  sites,
		points: make([]s2.Point, len(sites)),
	}
	for i, s := range sites {
		idx.points[i] = s2.PointFromLatLng(s2.LatLngFromDegrees(s.Lat, s.Lon))
	}
	return idx
}

// LoadSiteIndex reads a JSON array of sites from path.
func LoadSiteIndex(path string) (*SiteIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading sites file: %w", err)
	}
	var sites []Site
	if err := json.Unmarshal(data, &sites); err != nil {
		return nil, fmt.Errorf("error parsing sites file %s: %w", path, err)
	}
	return NewSiteIndex(sites), nil
}

func (idx *SiteIndex) Len() int {
	return len(idx.sites)
}

// Nearby returns every site within radiusKm of the point, closest first.
func (idx *SiteIndex) Nearby(lat, lon float64, radiusKm float64) []NearbySite {
	if idx == nil || len(idx.sites) == 0 {
		return nil
	}

	query := s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon))
	maxAngle := s1.Angle(radiusKm / earthRadiusKm)

	var out []NearbySite
	for i, p := range idx.points {
		angle := query.Distance(p)
		if angle > maxAngle {
			continue
		}
		out = append(out, NearbySite{
			Site:       idx.sites[i],
			DistanceKm: angle.Radians() * earthRadiusKm,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out
}

// DescribeNearby renders the nearby sites as a comma-joined free-text list
// suitable for a report's nearby-infrastructure field.
func (idx *SiteIndex) DescribeNearby(lat, lon float64, radiusKm float64) string {
	sites := idx.Nearby(lat, lon, radiusKm)
	if len(sites) == 0 {
		return ""
	}
	text := ""
	for i, s := range sites {
		if i > 0 {
			text += ", "
		}
		text += s.Name + " (" + s.Kind + ")"
	}
	return text
}
