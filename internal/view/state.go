package view

import "placeReviewsAPI/internal/types/place"

// State selects which of the two pages is showing. A zero Selected means the
// place list; anything else is the detail page of that place.
type State struct {
	Selected int64
}

func List() State { return State{} }

func Detail(id int64) State { return State{Selected: id} }

func (s State) Back() State { return List() }

func (s State) IsDetail() bool { return s.Selected != 0 }

// Resolve falls back to the list when the selected place is gone, e.g. after
// it was deleted while being viewed. The returned place is nil on the list.
func (s State) Resolve(places []place.Place) (State, *place.Place) {
	if !s.IsDetail() {
		return s, nil
	}
	for i := range places {
		if places[i].ID == s.Selected {
			return s, &places[i]
		}
	}
	return List(), nil
}
