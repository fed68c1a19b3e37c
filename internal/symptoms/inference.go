package symptoms

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/careassist-ai/appointment-agent/pkg/logging"
)

var tracer = otel.Tracer("appointment-agent/symptom-detector")

// minUtteranceLen is the shortest trimmed utterance worth scanning; anything
// at or below it is treated as conversational filler.
const minUtteranceLen = 5

// specialtyComplaints maps a specialty to the default complaint recorded when
// the patient has not described symptoms themselves.
var specialtyComplaints = map[string]string{
	"Pulmonology":            "Respiratory concerns (e.g., shortness of breath, cough, wheezing)",
	"Cardiology":             "Heart-related symptoms (e.g., chest pain, palpitations, fatigue)",
	"Dermatology":            "Skin condition (e.g., rashes, acne, infections, pigmentation)",
	"Neurology":              "Neurological symptoms (e.g., headaches, seizures, dizziness, memory issues)",
	"Orthopedics":            "Musculoskeletal issues (e.g., joint pain, fractures, back pain)",
	"Gastroenterology":       "Digestive system concerns (e.g., abdominal pain, bloating, acid reflux)",
	"ENT":                    "Ear, nose, or throat issues (e.g., sinus problems, hearing loss, sore throat)",
	"Ophthalmology":          "Eye-related concerns (e.g., blurred vision, redness, eye pain)",
	"Psychiatry":             "Mental health consultation (e.g., anxiety, depression, sleep issues)",
	"Gynecology":             "Women's health consultation (e.g., menstrual problems, PCOS, fertility)",
	"Urology":                "Urinary or kidney concerns (e.g., frequent urination, UTI, kidney stones)",
	"Endocrinology":          "Hormonal or metabolic issues (e.g., thyroid disorders, diabetes)",
	"Rheumatology":           "Autoimmune and inflammatory conditions (e.g., arthritis, lupus)",
	"Pediatrics":             "Child health issues (e.g., fever, infections, development concerns)",
	"Oncology":               "Cancer-related concerns (e.g., abnormal growths, diagnosis follow-up)",
	"Hematology":             "Blood-related issues (e.g., anemia, clotting disorders)",
	"Nephrology":             "Kidney-related concerns (e.g., chronic kidney disease, proteinuria)",
	"Hepatology":             "Liver-related conditions (e.g., hepatitis, liver function issues)",
	"Infectious Disease":     "Infection-related concerns (e.g., fever, viral illness, long COVID)",
	"General Medicine":       "General consultation or non-specific symptoms (e.g., fatigue, weakness)",
	"Allergy and Immunology": "Allergic reactions and immune system concerns (e.g., hay fever, hives)",
	"Pain Management":        "Chronic or acute pain (e.g., migraines, neuropathy)",
	"Plastic Surgery":        "Cosmetic or reconstructive surgery consultation",
	"Dentistry":              "Tooth or oral health issues (e.g., pain, decay, gum issues)",
	"Sexology":               "Sexual health concerns (e.g., performance issues, STIs)",
	"Nutrition & Dietetics":  "Dietary guidance and nutritional issues (e.g., weight management, deficiency)",
}

// symptomKeywords are the terms that mark an utterance as a symptom report.
var symptomKeywords = []string{
	"breathing", "cough", "chest", "pain", "headache", "fever",
	"dizzy", "nausea", "stomach", "back", "joint", "fatigue",
	"shortness of breath", "difficulty breathing", "wheezing",
	"heart", "palpitations", "anxiety", "depression", "skin",
	"rash", "allergy", "sore throat", "congestion", "ache",
	"hurt", "discomfort", "problem", "issue", "trouble",
}

// DefaultComplaint returns the default complaint line for a specialty.
// Specialties absent from the table fall back to "<specialty> consultation".
func DefaultComplaint(specialty string) string {
	if complaint, ok := specialtyComplaints[specialty]; ok {
		return complaint
	}
	return fmt.Sprintf("%s consultation", specialty)
}

// Detector scans free-text utterances for symptom language.
type Detector struct {
	logger   *logging.Logger
	keywords []string
}

// NewDetector creates a detector over the fixed symptom keyword set.
func NewDetector(logger *logging.Logger) *Detector {
	if logger == nil {
		logger = logging.Default()
	}
	return &Detector{
		logger:   logger,
		keywords: symptomKeywords,
	}
}

// Capture returns an attributed symptom summary when the utterance is long
// enough to matter and mentions a symptom term. The second return reports
// whether anything was captured.
func (d *Detector) Capture(ctx context.Context, utterance string) (string, bool) {
	_, span := tracer.Start(ctx, "symptoms.capture")
	defer span.End()

	trimmed := strings.TrimSpace(utterance)
	if len(trimmed) <= minUtteranceLen {
		return "", false
	}

	lower := strings.ToLower(trimmed)
	for _, keyword := range d.keywords {
		if strings.Contains(lower, keyword) {
			span.SetAttributes(
				attribute.Bool("symptoms.captured", true),
				attribute.String("symptoms.keyword", keyword),
			)
			d.logger.Info("captured symptoms from utterance", "keyword", keyword)
			return fmt.Sprintf("Patient reported: %s", trimmed), true
		}
	}
	return "", false
}
