package model

// Category is the closed set of item categories.
type Category string

// Item categories.
const (
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryAccessories Category = "accessories"
	CategoryDocuments   Category = "documents"
	CategoryKeys        Category = "keys"
	CategoryJewelry     Category = "jewelry"
	CategoryBags        Category = "bags"
	CategoryOther       Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryElectronics,
	CategoryClothing,
	CategoryAccessories,
	CategoryDocuments,
	CategoryKeys,
	CategoryJewelry,
	CategoryBags,
	CategoryOther,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Zone is a campus location where an item was lost or found.
type Zone string

// Campus zones.
const (
	ZoneBSH          Zone = "BSH-Department"
	ZoneCivil        Zone = "CIVIL-Department"
	ZoneBiotech      Zone = "BIOTECH-Department"
	ZoneENTC         Zone = "ENTC-Department"
	ZoneGround       Zone = "Ground"
	ZoneLibrary      Zone = "Library"
	ZoneAIML         Zone = "AIML-building"
	ZoneSouthEnclave Zone = "South-enclave"
	ZoneNorthEnclave Zone = "North-enclave"
	ZoneBoysHostel   Zone = "boys-hostel"
	ZoneGirlsHostel  Zone = "Girls-hostel"
	ZoneMBA          Zone = "MBA-building"
	ZoneOther        Zone = "other"
)

// Zones lists every campus zone in display order.
var Zones = []Zone{
	ZoneBSH,
	ZoneCivil,
	ZoneBiotech,
	ZoneENTC,
	ZoneGround,
	ZoneLibrary,
	ZoneAIML,
	ZoneSouthEnclave,
	ZoneNorthEnclave,
	ZoneBoysHostel,
	ZoneGirlsHostel,
	ZoneMBA,
	ZoneOther,
}

// Valid reports whether z is a known campus zone.
func (z Zone) Valid() bool {
	for _, known := range Zones {
		if z == known {
			return true
		}
	}
	return false
}
