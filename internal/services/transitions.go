package services

import "brotodesk/internal/models"

var transitions = map[models.Status][]models.Status{
	models.StatusPending:    {models.StatusInProgress},
	models.StatusInProgress: {models.StatusResolved},
	models.StatusResolved:   {models.StatusReopened, models.StatusClosed},
	models.StatusReopened:   {models.StatusInProgress, models.StatusResolved},
	models.StatusClosed:     {models.StatusReopened},
}

// CanTransition reports whether strict mode allows moving from one status
// to another. Re-applying the current status is always allowed.
func CanTransition(from, to models.Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
