// Package dupdetect warns staff who may be about to double-book an attendee.
// It is a linear scan over every booked slot; fine at a few hundred slots,
// would need an index beyond that.
package dupdetect

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"roomsched/models"
)

// Scorer is the pluggable similarity strategy. Swap it for an edit-distance
// or phonetic scorer without touching the traversal.
type Scorer interface {
	Score(a, b string) float64
}

// Match is one booked slot whose attendee name resembles the candidate.
type Match struct {
	RoomID       string  `json:"roomId"`
	RoomName     string  `json:"roomName"`
	DayID        string  `json:"dayId"`
	DayName      string  `json:"dayName"`
	SlotID       string  `json:"slotId"`
	SlotTime     string  `json:"slotTime"`
	AttendeeName string  `json:"attendeeName"`
	Similarity   float64 `json:"similarity"`
}

type Detector struct {
	scorer    Scorer
	minLength int
	threshold float64
}

func NewDetector() *Detector {
	return &Detector{scorer: NameScorer{}, minLength: 3, threshold: 0.6}
}

func NewDetectorWith(scorer Scorer, minLength int, threshold float64) *Detector {
	return &Detector{scorer: scorer, minLength: minLength, threshold: threshold}
}

// Find scans every booked slot across all rooms and returns matches scoring
// above the threshold, highest first. Ties keep room-day-slot discovery order.
func (d *Detector) Find(rooms []models.Room, name string) []Match {
	if len(strings.TrimSpace(name)) < d.minLength {
		return []Match{}
	}

	matches := []Match{}
	for _, room := range rooms {
		for _, day := range room.Schedule {
			for _, slot := range day.Slots {
				if !slot.IsBooked || slot.Attendee == nil || slot.Attendee.Name == "" {
					continue
				}
				similarity := d.scorer.Score(name, slot.Attendee.Name)
				if similarity > d.threshold {
					matches = append(matches, Match{
						RoomID:       room.ID,
						RoomName:     room.Name,
						DayID:        day.ID,
						DayName:      day.DayName,
						SlotID:       slot.ID,
						SlotTime:     slot.Time,
						AttendeeName: slot.Attendee.Name,
						Similarity:   similarity,
					})
				}
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches
}

// NameScorer grades name similarity: 1.0 for an exact normalized match, 0.8
// when one name contains the other, otherwise an accent-folded word-overlap
// ratio.
type NameScorer struct{}

func (NameScorer) Score(a, b string) float64 {
	s1 := strings.ToLower(strings.TrimSpace(a))
	s2 := strings.ToLower(strings.TrimSpace(b))

	if s1 == s2 {
		return 1.0
	}
	if strings.Contains(s1, s2) || strings.Contains(s2, s1) {
		return 0.8
	}

	words1 := strings.Fields(s1)
	words2 := strings.Fields(s2)
	total := len(words1)
	if len(words2) > total {
		total = len(words2)
	}
	if total == 0 {
		return 0
	}

	matching := 0
	for _, w1 := range words1 {
		if wordMatches(w1, words2) {
			matching++
		}
	}
	return float64(matching) / float64(total)
}

func wordMatches(w1 string, words2 []string) bool {
	f1 := foldAccents(w1)
	for _, w2 := range words2 {
		f2 := foldAccents(w2)
		if f1 == f2 || strings.Contains(f1, f2) || strings.Contains(f2, f1) {
			return true
		}
	}
	return false
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldAccents maps diacritics to their base Latin letters so that é matches e.
func foldAccents(s string) string {
	folded, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return folded
}
