package models

// RoomType identifies one of the four rooms of Casa Tiana.
type RoomType string

const (
	RoomSuite     RoomType = "suite-tiana"
	RoomAtlantico RoomType = "quarto-atlantico"
	RoomPalmeira  RoomType = "quarto-palmeira"
	RoomJardim    RoomType = "quarto-jardim"
)

// Room is a catalog entry. The catalog is fixed and lives in code, not in the
// database: the house has exactly four rooms.
type Room struct {
	Type          RoomType `json:"roomType"`
	Name          string   `json:"name"`
	PricePerNight float64  `json:"pricePerNight"` // CVE
	MaxGuests     int      `json:"maxGuests"`
}

var RoomCatalog = []Room{
	{Type: RoomSuite, Name: "Suíte Tiana", PricePerNight: 12500, MaxGuests: 3},
	{Type: RoomAtlantico, Name: "Quarto Atlântico", PricePerNight: 9500, MaxGuests: 2},
	{Type: RoomPalmeira, Name: "Quarto Palmeira", PricePerNight: 8500, MaxGuests: 2},
	{Type: RoomJardim, Name: "Quarto Jardim", PricePerNight: 7500, MaxGuests: 4},
}

// FindRoom returns the catalog entry for a room type, or nil for unknown ids.
func FindRoom(roomType string) *Room {
	for i := range RoomCatalog {
		if string(RoomCatalog[i].Type) == roomType {
			return &RoomCatalog[i]
		}
	}
	return nil
}

func IsValidRoomType(roomType string) bool {
	return FindRoom(roomType) != nil
}
