package memory

import "github.com/seatfeed/offer-aggregator/internal/domain/team"

func ident(name, slug string, aliases ...string) team.Identity {
	return team.Identity{
		CanonicalID: "t-" + slug,
		Name:        name,
		Slug:        slug,
		Aliases:     aliases,
	}
}

// SeedIdentities covers the clubs the default feeds actually list: the
// Premier League table plus the continental sides that show up in cup
// fixtures.
func SeedIdentities() []team.Identity {
	return []team.Identity{
		ident("Arsenal", "arsenal", "Arsenal FC"),
		ident("Aston Villa", "aston-villa", "Aston Villa FC"),
		ident("Bournemouth", "bournemouth", "AFC Bournemouth", "Bournemouth FC"),
		ident("Brentford", "brentford", "Brentford FC"),
		ident("Brighton", "brighton", "Brighton & Hove Albion"),
		ident("Burnley", "burnley", "Burnley FC"),
		ident("Chelsea", "chelsea", "Chelsea FC"),
		ident("Crystal Palace", "crystal-palace", "Crystal Palace FC"),
		ident("Everton", "everton", "Everton FC"),
		ident("Fulham", "fulham", "Fulham FC"),
		ident("Leeds", "leeds", "Leeds United"),
		ident("Liverpool", "liverpool", "Liverpool FC"),
		ident("Man City", "man-city", "Manchester City", "Manchester City FC"),
		ident("Man United", "man-united", "Manchester United", "Manchester United FC"),
		ident("Newcastle", "newcastle", "Newcastle United", "Newcastle United FC"),
		ident("Nottm Forest", "nottm-forest", "Nottingham Forest"),
		ident("Sunderland", "sunderland", "Sunderland AFC"),
		ident("Tottenham", "tottenham", "Tottenham Hotspur", "Tottenham Hotspur FC"),
		ident("West Ham", "west-ham", "West Ham United"),
		ident("Wolves", "wolves", "Wolverhampton Wanderers", "Wolverhampton Wanderers FC"),

		ident("AFC Ajax", "ajax"),
		ident("Atalanta", "atalanta", "Atalanta BC"),
		ident("Athletic Bilbao", "athletic-bilbao", "Athletic Club"),
		ident("Atletico Madrid", "atletico-madrid", "Atletico de Madrid"),
		ident("Bayer Leverkusen", "bayer-leverkusen", "Bayer 04 Leverkusen"),
		ident("Bayern Munich", "bayern-munich", "FC Bayern Munich"),
		ident("Benfica", "benfica", "SL Benfica"),
		ident("Bodø/Glimt", "bodoglimt", "FK Bodø/Glimt"),
		ident("Borussia Dortmund", "borussia-dortmund", "BVB Dortmund"),
		ident("Club Brugge", "club-brugge-kv", "Club Brugge KV"),
		ident("Eintracht Frankfurt", "eintracht-frankfurt"),
		ident("Galatasaray", "galatasaray", "Galatasaray SK"),
		ident("Inter", "inter", "FC Inter Milan", "Inter Milan"),
		ident("Juventus", "juventus", "Juventus FC"),
		ident("Marseille", "marseille", "Olympique de Marseille"),
		ident("Monaco", "monaco", "AS Monaco FC"),
		ident("Napoli", "napoli", "SSC Napoli"),
		ident("Olympiakos", "olympiakos-piraeus", "Olympiacos FC"),
		ident("Pafos", "pafos", "Pafos FC"),
		ident("Paris Saint-Germain", "paris-saint-germain", "Paris Saint-Germain FC", "PSG"),
		ident("PSV Eindhoven", "psv-eindhoven", "PSV"),
		ident("Qarabağ", "qarabag", "Qarabağ FK"),
		ident("Real Madrid", "real-madrid", "Real Madrid CF"),
		ident("Slavia Prague", "slavia-praha", "SK Slavia Prague"),
		ident("Sporting CP", "sporting-cp", "Sporting Lisbon"),
		ident("Union Saint-Gilloise", "union-st-gilloise"),
		ident("Villarreal", "villarreal", "Villarreal CF"),
		ident("FC Barcelona", "barcelona", "Barcelona"),
		ident("Kairat Almaty", "kairat-almaty"),
	}
}

// SeedMappings holds provider spellings that neither exact nor normalized
// matching would land on the right club.
func SeedMappings() team.MappingTable {
	return team.MappingTable{
		"Brighton and Hove Albion FC": "brighton",
		"Nottingham Forest FC":        "nottm-forest",
		"Wolverhampton":               "wolves",
		"Internazionale":              "inter",
		"Bayern München":              "bayern-munich",
	}
}
