package calendar

import (
	"context"

	"github.com/google/uuid"

	"github.com/Leganyst/booking-scheduler/internal/model"
)

// FindConflict ищет активную запись стороны party, пересекающуюся с window.
//   - записей со статусом canceled не рассматривает;
//   - запись excludeID (сама обновляемая запись) пропускает;
//   - возвращает первое найденное пересечение или nil.
func FindConflict(
	ctx context.Context,
	store Store,
	party Party,
	partyID uuid.UUID,
	window TimeRange,
	excludeID *uuid.UUID,
) (*model.Appointment, error) {
	existing, err := store.ListAppointmentsByParty(ctx, party, partyID, window)
	if err != nil {
		return nil, infraErr("list "+party.String()+" appointments", err)
	}

	for i := range existing {
		a := &existing[i]
		if !a.Status.Active() {
			continue
		}
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if window.Overlaps(TimeRange{Start: a.StartTime, End: a.EndTime}) {
			return a, nil
		}
	}
	return nil, nil
}

func doubleBookedKind(party Party) RejectionKind {
	if party == PartyProvider {
		return RejectProviderDoubleBooked
	}
	return RejectClientDoubleBooked
}

// checkParty превращает найденное пересечение в отказ.
func checkParty(
	ctx context.Context,
	store Store,
	party Party,
	partyID uuid.UUID,
	window TimeRange,
	excludeID *uuid.UUID,
) error {
	conflict, err := FindConflict(ctx, store, party, partyID, window, excludeID)
	if err != nil {
		return err
	}
	if conflict != nil {
		return Reject(doubleBookedKind(party))
	}
	return nil
}
