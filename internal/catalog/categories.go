package catalog

import (
	"maps"
	"slices"
)

// Categories maps a category group name to the dataset genre tags it covers.
type Categories map[string][]string

// DefaultCategories returns the built-in genre groups.
func DefaultCategories() Categories {
	return Categories{
		"Pop & Mainstream": {
			"pop", "power-pop", "dance", "dancehall", "edm", "synth-pop",
			"indie-pop", "j-pop", "k-pop", "mandopop", "cantopop", "latin",
			"latino", "swedish", "party", "pop-film", "show-tunes", "romance",
		},
		"Rock & Alternative": {
			"rock", "alt-rock", "alternative", "punk", "punk-rock", "hard-rock",
			"metal", "heavy-metal", "metalcore", "death-metal", "black-metal",
			"grindcore", "emo", "grunge", "psych-rock", "rock-n-roll", "rockabilly",
			"british", "indie", "garage", "industrial",
		},
		"Hip-Hop, R&B & Soul": {
			"hip-hop", "r-n-b", "soul", "funk", "groove", "gospel",
		},
		"Electronic & Dance": {
			"electronic", "house", "deep-house", "progressive-house", "techno",
			"minimal-techno", "trance", "dubstep", "electro", "detroit-techno",
			"chicago-house", "idm", "drum-and-bass", "dub", "breakbeat", "trip-hop", "club",
		},
		"Classical, Jazz & Instrumental": {
			"classical", "jazz", "piano", "ambient", "acoustic", "new-age",
			"sleep", "study", "songwriter", "singer-songwriter", "guitar",
		},
		"World & Regional": {
			"afrobeat", "brazil", "french", "german", "indian", "iranian",
			"j-dance", "j-rock", "malay", "spanish", "turkish", "world-music",
			"samba", "salsa", "forro", "pagode", "mpb", "sertanejo", "tango",
		},
		"Country, Folk & Roots": {
			"country", "bluegrass", "honky-tonk", "folk",
		},
		"Niche, Thematic & Other": {
			"anime", "children", "kids", "comedy", "disney", "opera", "happy",
			"sad", "chill", "party", "show-tunes",
		},
	}
}

// Tags returns the member tags of a category.
func (c Categories) Tags(name string) ([]string, bool) {
	tags, ok := c[name]
	if !ok || len(tags) == 0 {
		return nil, false
	}
	return tags, true
}

// Names returns the category names sorted alphabetically.
func (c Categories) Names() []string {
	return slices.Sorted(maps.Keys(c))
}
