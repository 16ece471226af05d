package auth

import (
	"errors"
	"strconv"
)

func userIDFromSubject(subject string) (int, error) {
	id, err := strconv.Atoi(subject)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errors.New("non-positive user id")
	}
	return id, nil
}

func subjectFromUserID(userID int) string {
	return strconv.Itoa(userID)
}
