package scan

// SlotCount is the number of photographs in a complete capture session.
const SlotCount = 5

// Slot names, in capture order.
const (
	SlotFace        = "face"
	SlotTongue      = "tongue"
	SlotConjunctiva = "conjunctiva"
	SlotPalm        = "palm"
	SlotNails       = "nails"
)

// Slot describes one named photograph position in a capture session.
type Slot struct {
	Name     string
	Label    string
	Guidance string
}

var slots = []Slot{
	{Name: SlotFace, Label: "Face Photo", Guidance: "Clear frontal face photo in natural light"},
	{Name: SlotTongue, Label: "Tongue Photo", Guidance: "Open mouth, show full tongue"},
	{Name: SlotConjunctiva, Label: "Lower Eyelid", Guidance: "Pull down lower eyelid to show conjunctiva"},
	{Name: SlotPalm, Label: "Palm / Wrist", Guidance: "Open palm showing inner wrist and creases"},
	{Name: SlotNails, Label: "Fingernail Beds", Guidance: "Press briefly then release, show nail color"},
}

// Slots returns the ordered slot definitions.
func Slots() []Slot {
	cp := make([]Slot, len(slots))
	copy(cp, slots)
	return cp
}

// SlotAt returns the slot definition for a capture step index.
func SlotAt(index int) (Slot, bool) {
	if index < 0 || index >= len(slots) {
		return Slot{}, false
	}
	return slots[index], true
}

// SlotNames returns the slot names in capture order.
func SlotNames() []string {
	names := make([]string, len(slots))
	for i, slot := range slots {
		names[i] = slot.Name
	}
	return names
}

// Image is one captured photograph. Slot may be empty for bulk submissions,
// where slot correspondence is not enforced.
type Image struct {
	Slot string
	Data []byte
}
