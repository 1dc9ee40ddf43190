package services

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"
	"time"

	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/infrastructure/config"
	"bloodbridge-http-service/utils"

	"gorm.io/gorm"
)

// Donor age window for donation eligibility, in full years.
const (
	donorAgeMin = 18
	donorAgeMax = 65
)

// Blood pressure bounds accepted for donation.
const (
	bpSystolicMin  = 90
	bpSystolicMax  = 180
	bpDiastolicMin = 50
	bpDiastolicMax = 110
)

// Default and minimum result counts for ranked recommendations.
const (
	recommendDefaultLimit = 10
	recommendMinLimit     = 1
)

// jitterAmplitude bounds the deterministic tie-break noise added to scores.
const jitterAmplitude = 0.75

// DonorRecommendation is one ranked donor with scoring details.
type DonorRecommendation struct {
	DonorID     uint     `json:"donor_id"`
	Name        string   `json:"name"`
	BloodGroup  string   `json:"blood_group"`
	Zipcode     string   `json:"zipcode,omitempty"`
	IsAvailable bool     `json:"is_available"`
	Score       float64  `json:"score"`
	DistanceKm  *float64 `json:"distance_km,omitempty"`
	Eligible    bool     `json:"eligible"`
	Reasons     []string `json:"reasons,omitempty"`
	Blockers    []string `json:"blockers,omitempty"`
}

// InterfaceRecommenderService defines the donor recommender interface
type InterfaceRecommenderService interface {
	RecommendForRequest(requestID uint, limit int, eligibleOnly bool) ([]DonorRecommendation, error)
	ScoreDonor(donor *models.Donor, request *models.BloodRequest, originLat, originLon *float64, now time.Time) DonorRecommendation
}

// RecommenderService ranks donors for a blood request. Scoring is
// deterministic: the same donor and request always produce the same score.
type RecommenderService struct {
	DB       *gorm.DB
	Config   *config.Config
	Geocoder InterfaceGeocodingService
}

// NewRecommenderService creates a new recommender service
func NewRecommenderService(db *gorm.DB, cfg *config.Config, geocoder InterfaceGeocodingService) InterfaceRecommenderService {
	return &RecommenderService{
		DB:       db,
		Config:   cfg,
		Geocoder: geocoder,
	}
}

// RecommendForRequest ranks donors matching the request's blood group. With
// eligibleOnly set, donors with any hard blocker are dropped before ranking.
// Available donors always sort before unavailable ones; within each half the
// order is by score descending.
func (s *RecommenderService) RecommendForRequest(requestID uint, limit int, eligibleOnly bool) ([]DonorRecommendation, error) {
	if limit <= 0 {
		limit = recommendDefaultLimit
	}
	if limit < recommendMinLimit {
		limit = recommendMinLimit
	}

	var request models.BloodRequest
	if err := s.DB.Preload("Patient").Preload("Donor").First(&request, requestID).Error; err != nil {
		return nil, err
	}

	originLat, originLon := s.requestOrigin(&request)

	var donors []models.Donor
	if err := s.DB.Where("blood_group = ?", request.BloodGroup).Find(&donors).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	recommendations := make([]DonorRecommendation, 0, len(donors))
	for i := range donors {
		rec := s.ScoreDonor(&donors[i], &request, originLat, originLon, now)
		if eligibleOnly && !rec.Eligible {
			continue
		}
		recommendations = append(recommendations, rec)
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		if recommendations[i].IsAvailable != recommendations[j].IsAvailable {
			return recommendations[i].IsAvailable
		}
		return recommendations[i].Score > recommendations[j].Score
	})

	if len(recommendations) > limit {
		recommendations = recommendations[:limit]
	}
	return recommendations, nil
}

// ScoreDonor computes one donor's score and eligibility blockers against a
// request
func (s *RecommenderService) ScoreDonor(donor *models.Donor, request *models.BloodRequest, originLat, originLon *float64, now time.Time) DonorRecommendation {
	weights := s.Config.RecommenderWeights()

	rec := DonorRecommendation{
		DonorID:     donor.ID,
		Name:        donor.GetName(),
		BloodGroup:  donor.BloodGroup,
		Zipcode:     donor.Zipcode,
		IsAvailable: donor.IsAvailable,
	}

	score := 0.0
	if donor.BloodGroup == request.BloodGroup {
		score += weights["blood_match"]
		rec.Reasons = append(rec.Reasons, "blood group match")
	}
	if donor.IsAvailable {
		score += weights["available"]
		rec.Reasons = append(rec.Reasons, "available now")
	}

	requestZip := s.requestZipcode(request)
	if requestZip != "" && donor.Zipcode != "" && donor.Zipcode == requestZip {
		score += weights["same_zip"]
		rec.Reasons = append(rec.Reasons, "same zipcode as requester")
	}

	if donor.Latitude != nil && donor.Longitude != nil {
		score += weights["has_coords"]
		if originLat != nil && originLon != nil {
			distance := utils.HaversineKm(*originLat, *originLon, *donor.Latitude, *donor.Longitude)
			rec.DistanceKm = &distance
			score -= weights["distance_km_penalty"] * distance
			rec.Reasons = append(rec.Reasons, fmt.Sprintf("%.1f km from requester", distance))
		}
	}

	// Missing weight, hemoglobin, or birth date each cost a flat penalty
	// rather than blocking the donor outright. A missing blood pressure
	// reading is only noted, it costs nothing.
	missing := 0
	if donor.WeightKg == nil {
		missing++
	}
	if donor.HemoglobinGdl == nil {
		missing++
	}
	if donor.DateOfBirth == nil {
		missing++
	}
	score -= weights["missing_medical_penalty"] * float64(missing)
	if donor.BloodPressureSystolic == nil || donor.BloodPressureDiastolic == nil {
		rec.Reasons = append(rec.Reasons, "no blood pressure reading")
	}

	if donor.HemoglobinGdl != nil && *donor.HemoglobinGdl >= s.hemoglobinFloor(donor.Sex) {
		score += weights["hemoglobin_bonus"]
		rec.Reasons = append(rec.Reasons, "hemoglobin above threshold")
	}
	if donor.BloodPressureSystolic != nil && donor.BloodPressureDiastolic != nil &&
		bpInRange(*donor.BloodPressureSystolic, *donor.BloodPressureDiastolic) {
		score += weights["bp_ok_bonus"]
		rec.Reasons = append(rec.Reasons, "blood pressure in range")
	}
	if donor.HasChronicDisease {
		score -= weights["chronic_penalty"]
	}
	if donor.OnMedication {
		score -= weights["medication_penalty"]
	}
	if donor.Smokes {
		score -= weights["smokes_penalty"]
	}

	score += stableJitter(donor.ID, request.ID)

	rec.Score = score
	rec.Blockers = s.eligibilityBlockers(donor, now)
	rec.Eligible = len(rec.Blockers) == 0
	return rec
}

// eligibilityBlockers returns every hard reason the donor cannot donate
// today. Unknown medical values never block, they only cost score.
func (s *RecommenderService) eligibilityBlockers(donor *models.Donor, now time.Time) []string {
	var blockers []string

	if !donor.IsAvailable {
		blockers = append(blockers, "donor marked unavailable")
	}

	if next := donor.NextEligibleDonationDate(s.Config.DonationRecoveryDays); next != nil && next.After(now) {
		blockers = append(blockers, fmt.Sprintf("within donation recovery window until %s", next.Format("2006-01-02")))
	}

	if age := donor.AgeYears(now); age != nil && (*age < donorAgeMin || *age > donorAgeMax) {
		blockers = append(blockers, fmt.Sprintf("age %d outside %d-%d", *age, donorAgeMin, donorAgeMax))
	}

	if donor.WeightKg != nil && *donor.WeightKg < s.Config.DonorWeightMinKg {
		blockers = append(blockers, fmt.Sprintf("weight below %dkg", s.Config.DonorWeightMinKg))
	}

	if donor.HemoglobinGdl != nil && *donor.HemoglobinGdl < s.hemoglobinFloor(donor.Sex) {
		blockers = append(blockers, fmt.Sprintf("hemoglobin below %.1f g/dL", s.hemoglobinFloor(donor.Sex)))
	}

	if donor.BloodPressureSystolic != nil && donor.BloodPressureDiastolic != nil &&
		!bpInRange(*donor.BloodPressureSystolic, *donor.BloodPressureDiastolic) {
		blockers = append(blockers, "blood pressure out of accepted range")
	}

	return blockers
}

// hemoglobinFloor returns the minimum hemoglobin by donor sex
func (s *RecommenderService) hemoglobinFloor(sex string) float64 {
	switch sex {
	case models.SexMale:
		return s.Config.DonorHbMinMale
	case models.SexFemale:
		return s.Config.DonorHbMinFemale
	default:
		return s.Config.DonorHbMinUnknown
	}
}

// requestZipcode returns the zipcode attached to the requester, if any
func (s *RecommenderService) requestZipcode(request *models.BloodRequest) string {
	switch {
	case request.Patient != nil:
		return request.Patient.Zipcode
	case request.Donor != nil:
		return request.Donor.Zipcode
	default:
		return ""
	}
}

// requestOrigin resolves the request's reference point for distance scoring.
// Only fixture lookups are allowed here: a ranking call must never block on
// the remote geocoder, and synthetic coordinates would skew distances. No
// fixture means no origin, so distance stays out of the scores.
func (s *RecommenderService) requestOrigin(request *models.BloodRequest) (*float64, *float64) {
	var address, zipcode string
	switch {
	case request.Patient != nil:
		address, zipcode = request.Patient.Address, request.Patient.Zipcode
	case request.Donor != nil:
		address, zipcode = request.Donor.Address, request.Donor.Zipcode
	}
	if address == "" && zipcode == "" {
		return nil, nil
	}

	lat, lon, ok := s.Geocoder.FixtureCoordinates(address, zipcode)
	if !ok {
		return nil, nil
	}
	return &lat, &lon
}

// stableJitter derives a deterministic tie-break offset in
// [-jitterAmplitude, +jitterAmplitude] from the donor and request identity.
func stableJitter(donorID, requestID uint) float64 {
	seed := fmt.Sprintf("donor|%d|request|%d", donorID, requestID)
	sum := sha256.Sum256([]byte(seed))
	frac := float64(binary.BigEndian.Uint64(sum[:8])) / float64(^uint64(0))
	return frac*2*jitterAmplitude - jitterAmplitude
}

// bpInRange reports whether a blood pressure reading falls inside the
// accepted donation bounds
func bpInRange(systolic, diastolic int) bool {
	return systolic >= bpSystolicMin && systolic <= bpSystolicMax &&
		diastolic >= bpDiastolicMin && diastolic <= bpDiastolicMax
}
