package services

import (
	"fmt"
	"math"
	"testing"
	"time"

	"bloodbridge-http-service/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRecommenderTestService(t *testing.T, db *gorm.DB) InterfaceRecommenderService {
	t.Helper()
	cfg := newTestConfig()
	return NewRecommenderService(db, cfg, NewGeocodingService(cfg))
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func timePtr(v time.Time) *time.Time {
	return &v
}

func TestScoreDonorDeterministic(t *testing.T) {
	db := newTestDB(t)
	svc := newRecommenderTestService(t, db)

	dob := time.Now().AddDate(-30, 0, 0)
	donor := &models.Donor{
		ID: 42, FirstName: "Meera", BloodGroup: "B+", IsAvailable: true,
		DateOfBirth: timePtr(dob), WeightKg: intPtr(62),
		HemoglobinGdl:          floatPtr(13.5),
		BloodPressureSystolic:  intPtr(118),
		BloodPressureDiastolic: intPtr(78),
		Sex:                    models.SexFemale,
	}
	request := &models.BloodRequest{ID: 7, BloodGroup: "B+"}

	now := time.Now()
	first := svc.ScoreDonor(donor, request, nil, nil, now)
	second := svc.ScoreDonor(donor, request, nil, nil, now)
	assert.Equal(t, first.Score, second.Score)
	assert.True(t, first.Eligible)
	assert.Empty(t, first.Blockers)
}

func TestStableJitterStaysInBounds(t *testing.T) {
	for donorID := uint(1); donorID <= 200; donorID++ {
		jitter := stableJitter(donorID, 99)
		assert.LessOrEqual(t, math.Abs(jitter), jitterAmplitude,
			"jitter out of bounds for donor %d", donorID)
	}
	// Same identity, same jitter
	assert.Equal(t, stableJitter(5, 9), stableJitter(5, 9))
	// Different identities almost surely differ
	assert.NotEqual(t, stableJitter(5, 9), stableJitter(6, 9))
}

func TestRecommendAvailableDonorsSortFirst(t *testing.T) {
	db := newTestDB(t)
	svc := newRecommenderTestService(t, db)

	patient := createTestPatient(t, db)
	request := &models.BloodRequest{
		PatientID: &patient.ID, PatientName: "Jane Doe", PatientAge: 41,
		Reason: "scheduled surgery next week", BloodGroup: "O+", Unit: 200,
		Status: models.StatusPending,
	}
	require.NoError(t, db.Create(request).Error)

	// The unavailable donor has a much stronger medical profile
	dob := time.Now().AddDate(-28, 0, 0)
	strong := &models.Donor{
		Username: "don_strong", Password: "x", FirstName: "Strong",
		BloodGroup: "O+", Mobile: "+919000000010", IsAvailable: false,
		DateOfBirth: timePtr(dob), WeightKg: intPtr(80),
		HemoglobinGdl:          floatPtr(15.0),
		BloodPressureSystolic:  intPtr(120),
		BloodPressureDiastolic: intPtr(80),
	}
	weak := &models.Donor{
		Username: "don_weak", Password: "x", FirstName: "Weak",
		BloodGroup: "O+", Mobile: "+919000000011", IsAvailable: true,
	}
	require.NoError(t, db.Create(strong).Error)
	require.NoError(t, db.Create(weak).Error)

	recs, err := svc.RecommendForRequest(request.ID, 10, false)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.True(t, recs[0].IsAvailable)
	assert.Equal(t, weak.ID, recs[0].DonorID)
	assert.False(t, recs[1].IsAvailable)
}

func TestRecommendEligibleOnlyDropsBlockedDonors(t *testing.T) {
	db := newTestDB(t)
	svc := newRecommenderTestService(t, db)

	patient := createTestPatient(t, db)
	request := &models.BloodRequest{
		PatientID: &patient.ID, PatientName: "Jane Doe", PatientAge: 41,
		Reason: "scheduled surgery next week", BloodGroup: "B-", Unit: 200,
		Status: models.StatusPending,
	}
	require.NoError(t, db.Create(request).Error)

	available := &models.Donor{
		Username: "don_open", Password: "x", FirstName: "Open",
		BloodGroup: "B-", Mobile: "+919000000020", IsAvailable: true,
	}
	unavailable := &models.Donor{
		Username: "don_away", Password: "x", FirstName: "Away",
		BloodGroup: "B-", Mobile: "+919000000021", IsAvailable: false,
	}
	require.NoError(t, db.Create(available).Error)
	require.NoError(t, db.Create(unavailable).Error)

	recs, err := svc.RecommendForRequest(request.ID, 10, true)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, available.ID, recs[0].DonorID)
	assert.True(t, recs[0].Eligible)

	// Opting in surfaces the blocked donor too, after the eligible one
	recs, err = svc.RecommendForRequest(request.ID, 10, false)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, unavailable.ID, recs[1].DonorID)
	assert.False(t, recs[1].Eligible)
}

func TestRecommendHonorsLimit(t *testing.T) {
	db := newTestDB(t)
	svc := newRecommenderTestService(t, db)

	patient := createTestPatient(t, db)
	request := &models.BloodRequest{
		PatientID: &patient.ID, PatientName: "Jane Doe", PatientAge: 41,
		Reason: "scheduled surgery next week", BloodGroup: "A+", Unit: 200,
		Status: models.StatusPending,
	}
	require.NoError(t, db.Create(request).Error)

	for i := 0; i < 15; i++ {
		donor := &models.Donor{
			Username:  fmt.Sprintf("don_many_%d", i),
			Password:  "x", FirstName: "Donor",
			BloodGroup: "A+", Mobile: fmt.Sprintf("+9190000001%02d", i),
			IsAvailable: true,
		}
		require.NoError(t, db.Create(donor).Error)
	}

	recs, err := svc.RecommendForRequest(request.ID, 5, true)
	require.NoError(t, err)
	assert.Len(t, recs, 5)

	// Zero limit falls back to the default
	recs, err = svc.RecommendForRequest(request.ID, 0, true)
	require.NoError(t, err)
	assert.Len(t, recs, recommendDefaultLimit)
}

func TestEligibilityBlockers(t *testing.T) {
	db := newTestDB(t)
	svc := newRecommenderTestService(t, db).(*RecommenderService)
	now := time.Now()

	dob := now.AddDate(-17, 0, 0)
	recent := now.AddDate(0, 0, -10)
	donor := &models.Donor{
		ID: 1, FirstName: "Blocked", BloodGroup: "O+",
		IsAvailable:            false,
		DateOfBirth:            timePtr(dob),
		WeightKg:               intPtr(45),
		HemoglobinGdl:          floatPtr(11.0),
		BloodPressureSystolic:  intPtr(200),
		BloodPressureDiastolic: intPtr(120),
		LastDonatedAt:          timePtr(recent),
		Sex:                    models.SexMale,
	}

	blockers := svc.eligibilityBlockers(donor, now)
	assert.Len(t, blockers, 6)

	// Unknown medical values never block
	unknown := &models.Donor{ID: 2, FirstName: "Unknown", BloodGroup: "O+", IsAvailable: true}
	assert.Empty(t, svc.eligibilityBlockers(unknown, now))
}

func TestScoreDonorDistancePenalty(t *testing.T) {
	db := newTestDB(t)
	svc := newRecommenderTestService(t, db)

	near := &models.Donor{
		ID: 1, FirstName: "Near", BloodGroup: "O+", IsAvailable: true,
		Latitude: floatPtr(12.97), Longitude: floatPtr(77.59),
	}
	far := &models.Donor{
		ID: 2, FirstName: "Far", BloodGroup: "O+", IsAvailable: true,
		Latitude: floatPtr(28.61), Longitude: floatPtr(77.21),
	}
	request := &models.BloodRequest{ID: 3, BloodGroup: "O+"}
	origin := [2]float64{12.97, 77.59}

	now := time.Now()
	nearRec := svc.ScoreDonor(near, request, &origin[0], &origin[1], now)
	farRec := svc.ScoreDonor(far, request, &origin[0], &origin[1], now)

	require.NotNil(t, nearRec.DistanceKm)
	require.NotNil(t, farRec.DistanceKm)
	assert.Less(t, *nearRec.DistanceKm, 1.0)
	assert.Greater(t, *farRec.DistanceKm, 1000.0)
	// Jitter is bounded by 0.75, far smaller than the ~260 point distance gap
	assert.Greater(t, nearRec.Score, farRec.Score)
}

func TestRecommendDistanceNeedsFixtureOrigin(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	svc := NewRecommenderService(db, cfg, NewGeocodingService(cfg))

	patient := createTestPatient(t, db)
	require.NoError(t, db.Model(&models.Patient{}).Where("id = ?", patient.ID).
		Update("address", "MG Road, Bangalore").Error)
	request := &models.BloodRequest{
		PatientID: &patient.ID, PatientName: "Jane Doe", PatientAge: 41,
		Reason: "scheduled surgery next week", BloodGroup: "O+", Unit: 200,
		Status: models.StatusPending,
	}
	require.NoError(t, db.Create(request).Error)

	donor := &models.Donor{
		Username: "don_geo", Password: "x", FirstName: "Geo",
		BloodGroup: "O+", Mobile: "+919000000030", IsAvailable: true,
		Latitude: floatPtr(12.98), Longitude: floatPtr(77.60),
	}
	require.NoError(t, db.Create(donor).Error)

	// No fixture for the requester's address: distance stays out of the
	// ranking rather than being derived from synthetic coordinates
	recs, err := svc.RecommendForRequest(request.ID, 10, true)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Nil(t, recs[0].DistanceKm)

	cfg.GeocoderFixtures["560001"] = [2]float64{12.9716, 77.5946}
	recs, err = svc.RecommendForRequest(request.ID, 10, true)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].DistanceKm)
	assert.Less(t, *recs[0].DistanceKm, 10.0)
}

func TestScoreDonorMissingBloodPressureCostsNothing(t *testing.T) {
	db := newTestDB(t)
	svc := newRecommenderTestService(t, db)
	weights := newTestConfig().RecommenderWeights()

	dob := time.Now().AddDate(-30, 0, 0)
	base := models.Donor{
		ID: 42, FirstName: "Meera", BloodGroup: "B+", IsAvailable: true,
		DateOfBirth: timePtr(dob), WeightKg: intPtr(62),
		HemoglobinGdl: floatPtr(13.5),
		Sex:           models.SexFemale,
	}
	withBP := base
	withBP.BloodPressureSystolic = intPtr(118)
	withBP.BloodPressureDiastolic = intPtr(78)

	request := &models.BloodRequest{ID: 7, BloodGroup: "B+"}
	now := time.Now()

	// Same donor identity means the same jitter, so the only score
	// difference is the in-range bonus. No missing-field penalty applies.
	withRec := svc.ScoreDonor(&withBP, request, nil, nil, now)
	withoutRec := svc.ScoreDonor(&base, request, nil, nil, now)
	assert.InDelta(t, weights["bp_ok_bonus"], withRec.Score-withoutRec.Score, 1e-9)

	assert.Contains(t, withRec.Reasons, "blood pressure in range")
	assert.Contains(t, withoutRec.Reasons, "no blood pressure reading")
	assert.True(t, withoutRec.Eligible)
}

func TestScoreDonorReportsReasons(t *testing.T) {
	db := newTestDB(t)
	svc := newRecommenderTestService(t, db)

	dob := time.Now().AddDate(-30, 0, 0)
	donor := &models.Donor{
		ID: 9, FirstName: "Ravi", BloodGroup: "O-", IsAvailable: true,
		Zipcode: "560001", DateOfBirth: timePtr(dob), WeightKg: intPtr(70),
		HemoglobinGdl:          floatPtr(14.2),
		BloodPressureSystolic:  intPtr(120),
		BloodPressureDiastolic: intPtr(80),
		Sex:                    models.SexMale,
	}
	request := &models.BloodRequest{
		ID: 4, BloodGroup: "O-",
		Patient: &models.Patient{Zipcode: "560001"},
	}

	rec := svc.ScoreDonor(donor, request, nil, nil, time.Now())
	assert.Contains(t, rec.Reasons, "blood group match")
	assert.Contains(t, rec.Reasons, "available now")
	assert.Contains(t, rec.Reasons, "same zipcode as requester")
	assert.Contains(t, rec.Reasons, "hemoglobin above threshold")
	assert.Contains(t, rec.Reasons, "blood pressure in range")
}
