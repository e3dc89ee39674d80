package domain

type (
	UserId = int64
	LinkId = int64
	Email  = string
	Phone  = string // canonical +<code><digits>, or "" when not given
	Slug   = string
)
