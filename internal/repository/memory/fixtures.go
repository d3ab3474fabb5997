package memory

import "citymove/internal/domain/entities"

// FixtureVehicles returns the built-in sample set served when the vehicle
// store is unavailable. Each call returns fresh copies.
func FixtureVehicles() []entities.Vehicle {
	return []entities.Vehicle{
		{
			ID:            "1",
			Category:      entities.CategoryBus,
			Name:          "City Bus Route 42",
			Route:         "Central Station → Market Square → Hospital Junction → University Campus",
			Position:      entities.NewLocation(12.9716, 77.5946),
			Stands:        []string{"Central Bus Stand", "Market Square", "Hospital Junction"},
			Price:         15,
			Duration:      "25 mins",
			NextAvailable: "5 mins",
		},
		{
			ID:            "2",
			Category:      entities.CategoryAuto,
			Name:          "Auto Rickshaw",
			Route:         "Market Square → Main Road → University Campus",
			Position:      entities.NewLocation(12.9742, 77.5952),
			Stands:        []string{"Market Auto Stand", "Railway Station", "Bus Stand"},
			Price:         45,
			Duration:      "15 mins",
			NextAvailable: "2 mins",
		},
		{
			ID:            "3",
			Category:      entities.CategoryCab,
			Name:          "Shared Taxi",
			Route:         "Railway Station → Highway → University Gate",
			Position:      entities.NewLocation(12.9698, 77.5938),
			Stands:        []string{"Railway Taxi Stand", "Airport Road", "City Center"},
			Price:         35,
			Duration:      "20 mins",
			NextAvailable: "8 mins",
		},
		{
			ID:            "4",
			Category:      entities.CategoryBus,
			Name:          "Express Bus 101",
			Route:         "IT Park → Commercial Street → Brigade Road",
			Position:      entities.NewLocation(12.9780, 77.5960),
			Stands:        []string{"IT Park Terminal", "Commercial Complex", "Brigade Bus Stop"},
			Price:         20,
			Duration:      "30 mins",
			NextAvailable: "12 mins",
		},
		{
			ID:            "5",
			Category:      entities.CategoryAuto,
			Name:          "Quick Auto",
			Route:         "MG Road → Brigade Road → Commercial Street",
			Position:      entities.NewLocation(12.9750, 77.6040),
			Stands:        []string{"MG Road Metro", "Brigade Road Corner", "Commercial Street Auto Stand"},
			Price:         55,
			Duration:      "18 mins",
			NextAvailable: "3 mins",
		},
	}
}
