package taskcore

// IconPair registers the plural counterpart of a singular icon.
type IconPair struct {
	Singular string
	Plural   string
}

// IconTable maps singular icons to their plural counterparts and back. A
// table is immutable once built and safe to share between objects.
type IconTable struct {
	plural   map[string]string
	singular map[string]string
}

// NewIconTable builds a table from pairs. Later pairs win on conflicts.
func NewIconTable(pairs ...IconPair) *IconTable {
	t := &IconTable{
		plural:   make(map[string]string, len(pairs)),
		singular: make(map[string]string, len(pairs)),
	}
	for _, pair := range pairs {
		if pair.Singular == "" || pair.Plural == "" {
			continue
		}
		t.plural[pair.Singular] = pair.Plural
		t.singular[pair.Plural] = pair.Singular
	}
	return t
}

// With returns a copy of t extended with pairs.
func (t *IconTable) With(pairs ...IconPair) *IconTable {
	return NewIconTable(append(t.Pairs(), pairs...)...)
}

// Plural returns the plural form registered for icon.
func (t *IconTable) Plural(icon string) (string, bool) {
	if t == nil {
		return "", false
	}
	plural, ok := t.plural[icon]
	return plural, ok
}

// Singular returns the singular form for a registered plural icon.
func (t *IconTable) Singular(icon string) (string, bool) {
	if t == nil {
		return "", false
	}
	singular, ok := t.singular[icon]
	return singular, ok
}

// Pairs lists the registered pairs in no particular order.
func (t *IconTable) Pairs() []IconPair {
	if t == nil {
		return nil
	}
	pairs := make([]IconPair, 0, len(t.plural))
	for singular, plural := range t.plural {
		pairs = append(pairs, IconPair{Singular: singular, Plural: plural})
	}
	return pairs
}

var defaultIcons = NewIconTable(
	IconPair{"book_icon", "books_icon"},
	IconPair{"cogwheel_icon", "cogwheels_icon"},
	IconPair{"envelope_icon", "envelopes_icon"},
	IconPair{"heart_icon", "hearts_icon"},
	IconPair{"key_icon", "keys_icon"},
	IconPair{"led_blue_icon", "folder_blue_icon"},
	IconPair{"led_blue_light_icon", "folder_blue_light_icon"},
	IconPair{"led_grey_icon", "folder_grey_icon"},
	IconPair{"led_green_icon", "folder_green_icon"},
	IconPair{"led_orange_icon", "folder_orange_icon"},
	IconPair{"led_purple_icon", "folder_purple_icon"},
	IconPair{"led_red_icon", "folder_red_icon"},
	IconPair{"led_yellow_icon", "folder_yellow_icon"},
	IconPair{"checkmark_green_icon", "checkmark_green_icon_multiple"},
	IconPair{"person_icon", "persons_icon"},
)

// DefaultIconTable returns the built-in icon pairs.
func DefaultIconTable() *IconTable {
	return defaultIcons
}
