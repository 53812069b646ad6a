package unitofwork_test

import "course-marketplace-be/internal/repository/contract"

func contractChange() contract.StatusChange {
	return contract.StatusChange{Reason: "test"}
}
