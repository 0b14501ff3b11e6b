package models

// Room types as stored in the rooms table.
const (
	RoomTypeSingle = "single"
	RoomTypeDouble = "double"
	RoomTypeSuite  = "suite"
)

// Reference encoding defaults, matching the production Sqids setup.
const (
	DefaultReferenceAlphabet  = "2pKB0eLxIhfd5GMH3qQREN9XaVPl7bUDtzZFoAjiwv6WgYumrcJ14yCnskT8SO"
	DefaultReferenceMinLength = 8
	DefaultReferenceAttempts  = 50
)

// Minimum length for hotel name searches.
const MinHotelNameSearch = 3
