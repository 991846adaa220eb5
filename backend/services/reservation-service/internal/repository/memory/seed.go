package memory

import "smartcharge/backend/services/reservation-service/internal/models"

// DemoEmail is the address of the seeded demo driver.
const DemoEmail = "demo@smartcharge.app"

// SeedDemo fills the store with the demo driver, one operator, a badge catalogue, a few
// stations and one global campaign.
func SeedDemo(s *Store) {
	driver := s.AddUser(models.User{Name: "Demo Driver", Email: DemoEmail, Role: models.RoleDriver})
	operator := s.AddUser(models.User{Name: "Demo Operator", Email: "operator@smartcharge.app", Role: models.RoleOperator})
	s.AddUser(models.User{Name: "Ayla Green", Email: "ayla@smartcharge.app", Role: models.RoleDriver, Coins: 620, XP: 1840, CO2Saved: 31.5})
	s.AddUser(models.User{Name: "Mert Volt", Email: "mert@smartcharge.app", Role: models.RoleDriver, Coins: 410, XP: 1210, CO2Saved: 18})

	early := s.AddBadge(models.Badge{Name: "Early Bird", Description: "Charged before 07:00", Icon: "sunrise"})
	s.AddBadge(models.Badge{Name: "Night Owl", Description: "Charged after 23:00", Icon: "moon"})
	s.AddBadge(models.Badge{Name: "Eco Warrior", Description: "Saved 50 kg of CO2", Icon: "leaf"})
	s.GrantBadge(driver.ID, early.ID)

	s.AddStation(models.Station{Name: "Kadikoy Hub", Address: "Moda Cd. 12, Istanbul", Latitude: 40.9869, Longitude: 29.0259, Price: 7.5, OwnerID: operator.ID})
	s.AddStation(models.Station{Name: "Levent Plaza", Address: "Buyukdere Cd. 185, Istanbul", Latitude: 41.0814, Longitude: 29.0110, Price: 8.25, OwnerID: operator.ID, Density: 55})
	s.AddStation(models.Station{Name: "Besiktas Pier", Address: "Barbaros Blv. 3, Istanbul", Latitude: 41.0422, Longitude: 29.0083, Price: 6.9, OwnerID: operator.ID})

	s.AddCampaign(models.Campaign{
		OwnerID:    operator.ID,
		Title:      "Green Week",
		Discount:   "%20",
		Status:     models.CampaignActive,
		CoinReward: 25,
	})
}
