package model

import "time"

// Photo is an encoded report image held by the database photo store.
type Photo struct {
	ID        string
	MIME      string
	Data      []byte
	CreatedAt time.Time
}
