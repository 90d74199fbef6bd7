package priority

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliefops/go-disaster-response/internal/models"
)

// fixedClassifier returns a canned impact or error for every lookup.
type fixedClassifier struct {
	impact Impact
	err    error
}

func (f *fixedClassifier) Classify(ctx context.Context, lat, lon float64, dt models.DisasterType) (Impact, error) {
	return f.impact, f.err
}

func strptr(s string) *string { return &s }

// scoringNow is the frozen "current time" for every test in this file.
var scoringNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func freezeClock(t *testing.T) {
	t.Helper()
	SetClock(clockwork.NewFakeClockAt(scoringNow))
	t.Cleanup(func() { SetClock(nil) })
}

// occurredAgo renders a timestamp the given number of hours before scoringNow.
func occurredAgo(hours int) string {
	return scoringNow.Add(-time.Duration(hours) * time.Hour).Format(models.OccurredAtLayout)
}

func TestScore_WildfireHighWeatherLargeAreaRecent(t *testing.T) {
	freezeClock(t)

	r := &models.Report{
		DisasterType:     models.DisasterTypeWildfire,
		Latitude:         37.5,
		Longitude:        -120.3,
		OccurredAt:       occurredAgo(2),
		AffectedAreaSize: strptr("1500"),
	}
	classifier := &fixedClassifier{impact: Impact{RiskLevel: RiskHigh}}

	res, err := Score(context.Background(), r, classifier)
	require.NoError(t, err)

	// 3 (wildfire) + 5 (high weather) + 4 (area >1000) + 3 (<6h)
	assert.Equal(t, 15, res.Score)
	assert.Equal(t, models.PriorityCritical, res.Level)
}

func TestScore_FloodNoWeatherNoAreaStale(t *testing.T) {
	freezeClock(t)

	r := &models.Report{
		DisasterType: models.DisasterTypeFlood,
		Latitude:     51.1,
		Longitude:    4.4,
		OccurredAt:   occurredAgo(100),
	}
	classifier := &fixedClassifier{err: errors.New("provider down")}

	res, err := Score(context.Background(), r, classifier)
	require.NoError(t, err)

	// 2 (flood) + 0 + 0 + 0
	assert.Equal(t, 2, res.Score)
	assert.Equal(t, models.PriorityLow, res.Level)
	assert.Contains(t, res.TraceText(), "Weather: data unavailable")
	assert.Contains(t, res.TraceText(), "Affected area: not provided")
}

func TestScore_EarthquakeNearDamAndHospital(t *testing.T) {
	freezeClock(t)

	r := &models.Report{
		DisasterType:         models.DisasterTypeEarthquake,
		Latitude:             38.0,
		Longitude:            23.7,
		OccurredAt:           occurredAgo(10),
		AffectedAreaSize:     strptr("50"),
		NearbyInfrastructure: "Dam and hospital",
	}
	classifier := &fixedClassifier{impact: Impact{RiskLevel: RiskMedium}}

	res, err := Score(context.Background(), r, classifier)
	require.NoError(t, err)

	// 3 + 3 + 2 + 2 + 5 (hospital) + 3 (quake near dam)
	assert.Equal(t, 18, res.Score)
	assert.Equal(t, models.PriorityCritical, res.Level)
	assert.Contains(t, res.TraceText(), "Cascading effects")
}

func TestScore_EmptyAreaUsesParseFailedBranch(t *testing.T) {
	freezeClock(t)

	r := &models.Report{
		DisasterType:     models.DisasterTypeOther,
		Latitude:         1,
		Longitude:        1,
		OccurredAt:       occurredAgo(200),
		AffectedAreaSize: strptr(""),
	}

	res, err := Score(context.Background(), r, nil)
	require.NoError(t, err)

	// An empty string is present but unparseable: zero points, and not the
	// +1 the small-area branch would give.
	assert.Equal(t, 0, res.Score)
	assert.Contains(t, res.TraceText(), "Affected area: unreadable")
	assert.NotContains(t, res.TraceText(), "Affected area: <10")
}

func TestScore_UnparseableAreaVersusSmallArea(t *testing.T) {
	freezeClock(t)

	base := models.Report{
		DisasterType: models.DisasterTypeOther,
		OccurredAt:   occurredAgo(200),
	}

	garbled := base
	garbled.AffectedAreaSize = strptr("about ten")
	resGarbled, err := Score(context.Background(), &garbled, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, resGarbled.Score)

	small := base
	small.AffectedAreaSize = strptr("4")
	resSmall, err := Score(context.Background(), &small, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, resSmall.Score)
}

func TestScore_AreaBands(t *testing.T) {
	freezeClock(t)

	tests := []struct {
		area string
		want int
	}{
		{"5000", 4},
		{"1001", 4},
		{"1000", 3},
		{"500", 3},
		{"101", 3},
		{"100", 2},
		{"11", 2},
		{"10", 1},
		{"0", 1},
	}
	for _, tc := range tests {
		r := &models.Report{
			DisasterType:     models.DisasterTypeOther,
			OccurredAt:       occurredAgo(200),
			AffectedAreaSize: strptr(tc.area),
		}
		res, err := Score(context.Background(), r, nil)
		require.NoError(t, err)
		assert.Equal(t, tc.want, res.Score, "area %s", tc.area)
	}
}

func TestScore_RecencyBands(t *testing.T) {
	freezeClock(t)

	tests := []struct {
		hoursAgo int
		want     int
	}{
		{1, 3},
		{5, 3},
		{6, 2},
		{23, 2},
		{24, 1},
		{71, 1},
		{72, 0},
		{500, 0},
	}
	for _, tc := range tests {
		r := &models.Report{
			DisasterType: models.DisasterTypeOther,
			OccurredAt:   occurredAgo(tc.hoursAgo),
		}
		res, err := Score(context.Background(), r, nil)
		require.NoError(t, err)
		assert.Equal(t, tc.want, res.Score, "%dh ago", tc.hoursAgo)
	}
}

func TestScore_WeatherRiskBands(t *testing.T) {
	freezeClock(t)

	tests := []struct {
		risk string
		want int
	}{
		{RiskHigh, 5},
		{RiskMedium, 3},
		{RiskLow, 1},
		{"Severe", 0},
		{"", 0},
	}
	for _, tc := range tests {
		r := &models.Report{
			DisasterType: models.DisasterTypeOther,
			Latitude:     10,
			Longitude:    10,
			OccurredAt:   occurredAgo(200),
		}
		classifier := &fixedClassifier{impact: Impact{RiskLevel: tc.risk}}
		res, err := Score(context.Background(), r, classifier)
		require.NoError(t, err)
		assert.Equal(t, tc.want, res.Score, "risk %q", tc.risk)
	}
}

func TestScore_TierThresholds(t *testing.T) {
	freezeClock(t)

	// Drive the total with the area and recency contributions only.
	tests := []struct {
		name     string
		hoursAgo int
		area     *string
		infra    string
		want     models.PriorityLevel
	}{
		{"score 0", 200, nil, "", models.PriorityLow},
		{"score 1", 200, strptr("1"), "", models.PriorityLow},
		{"score 3", 200, strptr("500"), "", models.PriorityMedium},
		{"score 4", 71, strptr("500"), "", models.PriorityMedium},
		{"score 5", 23, strptr("500"), "", models.PriorityHigh},
		{"score 7", 5, strptr("5000"), "", models.PriorityHigh},
		{"score 8", 200, strptr("500"), "hospital", models.PriorityCritical},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := &models.Report{
				DisasterType:         models.DisasterTypeOther,
				OccurredAt:           occurredAgo(tc.hoursAgo),
				AffectedAreaSize:     tc.area,
				NearbyInfrastructure: tc.infra,
			}
			res, err := Score(context.Background(), r, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Level, "score %d", res.Score)
		})
	}
}

func TestScore_MalformedTimestampIsFatal(t *testing.T) {
	freezeClock(t)

	r := &models.Report{
		DisasterType: models.DisasterTypeWildfire,
		OccurredAt:   "03/10/2026 08:00",
	}

	_, err := Score(context.Background(), r, nil)
	assert.Error(t, err)
}

func TestScore_InfrastructureMatchingIsCaseInsensitive(t *testing.T) {
	freezeClock(t)

	for _, infra := range []string{"HOSPITAL", "Power Plant nearby", "st. mary hospital"} {
		r := &models.Report{
			DisasterType:         models.DisasterTypeOther,
			OccurredAt:           occurredAgo(200),
			NearbyInfrastructure: infra,
		}
		res, err := Score(context.Background(), r, nil)
		require.NoError(t, err)
		assert.Equal(t, 5, res.Score, "infra %q", infra)
	}

	// A dam alone only cascades for earthquakes.
	r := &models.Report{
		DisasterType:         models.DisasterTypeFlood,
		OccurredAt:           occurredAgo(200),
		NearbyInfrastructure: "dam",
	}
	res, err := Score(context.Background(), r, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Score)
}

func TestScore_TraceEndsWithScoreAndTier(t *testing.T) {
	freezeClock(t)

	r := &models.Report{
		DisasterType: models.DisasterTypeHurricane,
		OccurredAt:   occurredAgo(1),
	}
	res, err := Score(context.Background(), r, nil)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(res.Trace), 2)
	assert.Equal(t, "Final score: 6", res.Trace[len(res.Trace)-2])
	assert.Equal(t, "Priority: High", res.Trace[len(res.Trace)-1])
}
