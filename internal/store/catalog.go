package store

import "mindjournal/internal/models"

// DefaultRewards is the catalog used when no rewards snapshot exists yet.
var DefaultRewards = []models.Reward{
	{
		ID:          "1",
		Title:       "Meditation App - 1 Month Free",
		Description: "Get one month free access to premium meditation content",
		PointsCost:  500,
		Image:       "https://images.unsplash.com/photo-1545389336-cf090694435e?q=80&w=400&auto=format&fit=crop",
	},
	{
		ID:          "2",
		Title:       "Mental Health E-Book Bundle",
		Description: "Collection of 3 e-books on mindfulness and mental wellness",
		PointsCost:  350,
		Image:       "https://images.unsplash.com/photo-1544947950-fa07a98d237f?q=80&w=400&auto=format&fit=crop",
	},
	{
		ID:          "3",
		Title:       "Sleep Sounds Premium",
		Description: "3 months access to premium sleep and relaxation sounds",
		PointsCost:  600,
		Image:       "https://images.unsplash.com/photo-1511295742362-92c96b1cf484?q=80&w=400&auto=format&fit=crop",
	},
	{
		ID:          "4",
		Title:       "Wellness Journal Template",
		Description: "Digital template for tracking habits and wellness goals",
		PointsCost:  200,
		Image:       "https://images.unsplash.com/photo-1506784365847-bbad939e9335?q=80&w=400&auto=format&fit=crop",
	},
	{
		ID:          "5",
		Title:       "Yoga Class Voucher",
		Description: "One free online yoga class with certified instructors",
		PointsCost:  450,
		Image:       "https://images.unsplash.com/photo-1575052814086-f385e2e2ad1b?q=80&w=400&auto=format&fit=crop",
	},
}
