package sizes

import "time"

type Size struct {
	ID        int64     `json:"id"`
	SizeName  string    `json:"sizeName"`
	CreatedAt time.Time `json:"createdAt"`
}
