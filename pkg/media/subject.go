package media

import "strings"

// Subject is the coarse category used to pick certificate wording.
type Subject string

const (
	SubjectPeople  Subject = "people"
	SubjectScenery Subject = "scenery"
	SubjectObject  Subject = "object"
)

var (
	peopleKeywords = []string{
		"portrait", "selfie", "family", "wedding", "graduation", "birthday",
		"people", "person", "face", "group", "friends",
	}
	sceneryKeywords = []string{
		"landscape", "sunset", "sunrise", "mountain", "beach", "ocean",
		"forest", "sky", "nature", "view", "scenery", "horizon",
	}
	outdoorEnvironments = map[string]bool{
		"outdoor": true, "nature": true, "beach": true, "mountain": true,
	}
)

// DetectSubject classifies an asset from its face count, file name and
// environment tag, in that order.
func (a Asset) DetectSubject() Subject {
	if a.Metadata != nil && a.Metadata.Faces > 0 {
		return SubjectPeople
	}

	name := strings.ToLower(a.Name)
	if containsAny(name, peopleKeywords) {
		return SubjectPeople
	}
	if containsAny(name, sceneryKeywords) {
		return SubjectScenery
	}

	if a.Metadata != nil && outdoorEnvironments[a.Metadata.Environment] {
		return SubjectScenery
	}
	return SubjectObject
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
