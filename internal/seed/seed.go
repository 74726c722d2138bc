package seed

import "placeReviewsAPI/internal/types/place"

// Places returns a fresh copy of the built-in place list used when no
// saved state exists.
func Places() []place.Place {
	return []place.Place{
		{
			ID:          1,
			Name:        "Hobbitfalva",
			Description: "A legbékésebb hely a Megyében!",
			Reviews: []place.Review{
				{ID: 1, User: "Samu", Text: "Békés és zöld! 5 csillag!", Rating: 5},
				{ID: 2, User: "Pippin", Text: "Sok sör, sok pite. Legjobb hely!", Rating: 5},
				{ID: 3, User: "Frodó", Text: "Rossz volt itt hagyni!", Rating: 4},
				{ID: 4, User: "Gandalf", Text: "Jó hely tüzijátékozásra!", Rating: 5},
				{ID: 5, User: "Bilbó", Text: "Egy csodás otthon volt számomra.", Rating: 5},
			},
		},
		{
			ID:          2,
			Name:        "Mordor",
			Description: "A TripAdvisor közössége felszeretné hívni a figyelmet, hogy a terület megközelítése életveszélyes. A TripAdvisor közössége nem ajánlja a látogatást ugyanis súlyos testi sérülés vagy akár halál következhet be.",
			Reviews: []place.Review{
				{ID: 1, User: "Gollam", Text: "Nagyon meleg, nem ajánlanám.", Rating: 2},
				{ID: 2, User: "Frodó", Text: "Fúh, de nagy hőség!", Rating: 1},
				{ID: 3, User: "Samu", Text: "Nem jönnék vissza, meleg van.", Rating: 2},
				{ID: 4, User: "Szauron", Text: "Jó hely..", Rating: 4},
			},
		},
		{
			ID:          3,
			Name:        "Völgyzugoly",
			Description: "Jó hely!",
			Reviews: []place.Review{
				{ID: 1, User: "Bilbó", Text: "Béke nyugalom és biztonság.", Rating: 5},
				{ID: 2, User: "Pippin", Text: "Több buli kellene.", Rating: 3},
				{ID: 3, User: "Frodó", Text: "Életmentő hely!", Rating: 5},
				{ID: 4, User: "Samu", Text: "Csodás!", Rating: 5},
				{ID: 5, User: "Anonymus Ork", Text: "Nem tudtam bejutni.", Rating: 1},
			},
		},
		{
			ID:          4,
			Name:        "Lothlórien",
			Description: "Teszt!",
			Reviews: []place.Review{
				{ID: 1, User: "Pippin", Text: "Nincs kocsma.", Rating: 3},
				{ID: 2, User: "Frodó", Text: "Fényt kaptam!", Rating: 5},
				{ID: 3, User: "Samu", Text: "Csodás hely!", Rating: 5},
				{ID: 4, User: "Legolas", Text: "Legszebb erdő!", Rating: 5},
			},
		},
		{
			ID:          5,
			Name:        "Sírbuckák",
			Description: "Fkozott figyelemmel látogassa ezt a helyet!",
			Reviews: []place.Review{
				{ID: 1, User: "Pippin", Text: "Nagyon rossz volt.", Rating: 1},
				{ID: 2, User: "Frodó", Text: "Jaj, borzalmas hely.", Rating: 1},
				{ID: 3, User: "Samu", Text: "A környékére sem szeretnék menni!", Rating: 1},
				{ID: 4, User: "Bombadil Toma", Text: "Egy dal kell, és minden probléma elszáll!", Rating: 3},
			},
		},
	}
}
