package entities

import "strings"

// Competition is a league or tournament a prediction can target
type Competition struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Sport   Sport  `json:"sport"`
}

var competitionsBySport = map[Sport][]Competition{
	SportFootball: {
		// European leagues
		{Code: "FRA_L1", Name: "Ligue 1", Country: "France"},
		{Code: "FRA_L2", Name: "Ligue 2", Country: "France"},
		{Code: "ENG_PL", Name: "Premier League", Country: "England"},
		{Code: "ENG_CH", Name: "Championship", Country: "England"},
		{Code: "ESP_LALIGA", Name: "La Liga", Country: "Spain"},
		{Code: "ESP_L2", Name: "La Liga 2", Country: "Spain"},
		{Code: "ITA_SA", Name: "Serie A", Country: "Italy"},
		{Code: "ITA_SB", Name: "Serie B", Country: "Italy"},
		{Code: "GER_BL", Name: "Bundesliga", Country: "Germany"},
		{Code: "GER_BL2", Name: "2. Bundesliga", Country: "Germany"},
		{Code: "POR_LP", Name: "Liga Portugal", Country: "Portugal"},
		{Code: "NED_E", Name: "Eredivisie", Country: "Netherlands"},
		{Code: "BEL_JL", Name: "Jupiler Pro League", Country: "Belgium"},
		{Code: "SCO_PL", Name: "Scottish Premiership", Country: "Scotland"},
		{Code: "RUS_PL", Name: "Russian Premier League", Country: "Russia"},
		{Code: "TUR_SL", Name: "Super Lig", Country: "Turkey"},
		{Code: "GRC_SL", Name: "Super League Greece", Country: "Greece"},
		{Code: "UKR_PL", Name: "Ukrainian Premier League", Country: "Ukraine"},
		{Code: "CZE_FL", Name: "Czech First League", Country: "Czechia"},
		{Code: "AUT_BL", Name: "Austrian Bundesliga", Country: "Austria"},
		{Code: "DNK_SL", Name: "Danish Superliga", Country: "Denmark"},
		{Code: "CHE_SL", Name: "Swiss Super League", Country: "Switzerland"},
		{Code: "SWE_AE", Name: "Allsvenskan", Country: "Sweden"},
		{Code: "NOR_EL", Name: "Eliteserien", Country: "Norway"},
		{Code: "POL_EKS", Name: "Ekstraklasa", Country: "Poland"},
		{Code: "ROU_L1", Name: "Liga I", Country: "Romania"},
		{Code: "HUN_NBI", Name: "NB I", Country: "Hungary"},
		{Code: "CRO_HNL", Name: "HNL", Country: "Croatia"},
		{Code: "SRB_SL", Name: "SuperLiga", Country: "Serbia"},
		{Code: "SLO_1SNL", Name: "PrvaLiga", Country: "Slovenia"},
		{Code: "SVK_FL", Name: "Fortuna Liga", Country: "Slovakia"},
		{Code: "BUL_PFL", Name: "First Professional Football League", Country: "Bulgaria"},
		{Code: "CYP_1D", Name: "First Division", Country: "Cyprus"},
		{Code: "ISR_PL", Name: "Ligat Ha'Al", Country: "Israel"},
		{Code: "IRL_PD", Name: "Premier Division", Country: "Ireland"},
		{Code: "WAL_CYP", Name: "Cymru Premier", Country: "Wales"},
		{Code: "NIR_NIFL", Name: "NIFL Premiership", Country: "Northern Ireland"},
		// National cups
		{Code: "FRA_CDF", Name: "Coupe de France", Country: "France"},
		{Code: "FRA_CDL", Name: "Coupe de la Ligue", Country: "France"},
		{Code: "ENG_FACUP", Name: "FA Cup", Country: "England"},
		{Code: "ENG_LCUP", Name: "EFL Cup", Country: "England"},
		{Code: "ESP_CR", Name: "Copa del Rey", Country: "Spain"},
		{Code: "ITA_CI", Name: "Coppa Italia", Country: "Italy"},
		{Code: "GER_DFBP", Name: "DFB-Pokal", Country: "Germany"},
		// UEFA
		{Code: "UEFA_CL", Name: "UEFA Champions League", Country: "Europe"},
		{Code: "UEFA_EL", Name: "UEFA Europa League", Country: "Europe"},
		{Code: "UEFA_UECL", Name: "UEFA Conference League", Country: "Europe"},
		{Code: "UEFA_SC", Name: "UEFA Super Cup", Country: "Europe"},
		{Code: "UEFA_YL", Name: "UEFA Youth League", Country: "Europe"},
		{Code: "UEFA_U19", Name: "UEFA European Under-19 Championship", Country: "Europe"},
		{Code: "UEFA_U21", Name: "UEFA European Under-21 Championship", Country: "Europe"},
		{Code: "UEFA_WCL", Name: "UEFA Women's Champions League", Country: "Europe"},
		{Code: "UEFA_EURO", Name: "UEFA European Championship", Country: "Europe"},
		{Code: "UEFA_NL", Name: "UEFA Nations League", Country: "Europe"},
		// South America
		{Code: "BRA_SERIE_A", Name: "Brasileirao Serie A", Country: "Brazil"},
		{Code: "BRA_CDP", Name: "Copa do Brasil", Country: "Brazil"},
		{Code: "ARG_LPF", Name: "Liga Profesional Argentina", Country: "Argentina"},
		{Code: "ARG_CP", Name: "Copa Argentina", Country: "Argentina"},
		{Code: "CHL_PD", Name: "Primera Division de Chile", Country: "Chile"},
		{Code: "COL_PD", Name: "Categoria Primera A", Country: "Colombia"},
		{Code: "ECU_SA", Name: "Serie A", Country: "Ecuador"},
		{Code: "PER_PD", Name: "Liga 1", Country: "Peru"},
		{Code: "URU_PD", Name: "Primera Division", Country: "Uruguay"},
		{Code: "CONMEBOL_CL", Name: "Copa Libertadores", Country: "South America"},
		{Code: "CONMEBOL_CS", Name: "Copa Sudamericana", Country: "South America"},
		{Code: "CONMEBOL_RC", Name: "Recopa Sudamericana", Country: "South America"},
		{Code: "CONMEBOL_CA", Name: "Copa America", Country: "South America"},
		// North America
		{Code: "USA_MLS", Name: "Major League Soccer", Country: "USA/Canada"},
		{Code: "USA_OPC", Name: "US Open Cup", Country: "USA"},
		{Code: "MEX_LM", Name: "Liga MX", Country: "Mexico"},
		{Code: "CONCACAF_CCC", Name: "CONCACAF Champions Cup", Country: "North America"},
		{Code: "CONCACAF_LN", Name: "CONCACAF Nations League", Country: "North America"},
		{Code: "CONCACAF_GC", Name: "Gold Cup", Country: "North America"},
		// Africa
		{Code: "CAF_CL", Name: "CAF Champions League", Country: "Africa"},
		{Code: "CAF_CONF", Name: "CAF Confederation Cup", Country: "Africa"},
		{Code: "CAF_SC", Name: "CAF Super Cup", Country: "Africa"},
		{Code: "CAF_CAN", Name: "Africa Cup of Nations", Country: "Africa"},
		{Code: "CAF_CHAN", Name: "African Nations Championship", Country: "Africa"},
		{Code: "EGY_PL", Name: "Egyptian Premier League", Country: "Egypt"},
		{Code: "MAR_BL", Name: "Botola Pro", Country: "Morocco"},
		{Code: "DZA_L1", Name: "Ligue 1", Country: "Algeria"},
		{Code: "CIV_L1", Name: "Ligue 1", Country: "Ivory Coast"},
		{Code: "COD_LNF", Name: "Linafoot", Country: "DR Congo"},
		{Code: "ZAF_PSL", Name: "Premiership", Country: "South Africa"},
		{Code: "SEN_L1", Name: "Ligue 1", Country: "Senegal"},
		{Code: "CMR_EL1", Name: "Elite One", Country: "Cameroon"},
		{Code: "KEN_KPL", Name: "Kenyan Premier League", Country: "Kenya"},
		{Code: "GHA_GPL", Name: "Ghana Premier League", Country: "Ghana"},
		{Code: "BEN_LP", Name: "Ligue Professionnelle", Country: "Benin"},
		{Code: "TUN_L1", Name: "Ligue 1", Country: "Tunisia"},
		// Asia and Oceania
		{Code: "AFC_CL", Name: "AFC Champions League", Country: "Asia"},
		{Code: "AFC_CUP", Name: "AFC Cup", Country: "Asia"},
		{Code: "AFC_AC", Name: "AFC Asian Cup", Country: "Asia"},
		{Code: "JPN_J1", Name: "J1 League", Country: "Japan"},
		{Code: "KOR_K1", Name: "K League 1", Country: "South Korea"},
		{Code: "SAU_PL", Name: "Saudi Pro League", Country: "Saudi Arabia"},
		{Code: "CHN_CSL", Name: "Chinese Super League", Country: "China"},
		{Code: "QAT_QSL", Name: "Qatar Stars League", Country: "Qatar"},
		{Code: "UAE_ADL", Name: "UAE Pro League", Country: "United Arab Emirates"},
		{Code: "IND_ISL", Name: "Indian Super League", Country: "India"},
		{Code: "AUS_AL", Name: "A-League Men", Country: "Australia"},
		{Code: "OFC_Nations", Name: "OFC Nations Cup", Country: "Oceania"},
		// World
		{Code: "FIFA_WC", Name: "FIFA World Cup", Country: "World"},
		{Code: "FIFA_WCC", Name: "FIFA Club World Cup", Country: "World"},
		{Code: "FIFA_UWNT", Name: "FIFA Women's World Cup", Country: "World"},
		{Code: "FIFA_WC_Q", Name: "FIFA World Cup Qualifiers", Country: "World"},
		{Code: "INT_FIFA_WC_Q", Name: "World Cup Qualifiers", Country: "World"},
		{Code: "INT_AFCON_Q", Name: "Africa Cup of Nations Qualifiers", Country: "Africa"},
		{Code: "OTHER", Name: "Other", Country: "International"},
	},
	SportHandball: {
		{Code: "EHF_CL", Name: "EHF Champions League", Country: "Europe"},
		{Code: "GER_HBL", Name: "Handball-Bundesliga", Country: "Germany"},
		{Code: "FRA_LSL", Name: "Starligue", Country: "France"},
		{Code: "ESP_ASOBAL", Name: "Liga ASOBAL", Country: "Spain"},
		{Code: "DEN_HBL", Name: "Handboldligaen", Country: "Denmark"},
		{Code: "POL_PGNiG", Name: "Superliga", Country: "Poland"},
		{Code: "IHF_U19", Name: "IHF Men's Youth World Championship", Country: "World"},
		{Code: "IHF_U21", Name: "IHF Men's Junior World Championship", Country: "World"},
		{Code: "INT_HB_EURO", Name: "EHF EURO", Country: "Europe"},
	},
	SportRugby: {
		{Code: "RUG_TOP14", Name: "Top 14", Country: "France"},
		{Code: "RUG_PR", Name: "Premiership Rugby", Country: "England"},
		{Code: "RUG_URC", Name: "United Rugby Championship", Country: "Europe/Africa"},
		{Code: "RUG_SR", Name: "Super Rugby Pacific", Country: "New Zealand/Australia"},
		{Code: "RUG_CURRIE", Name: "Currie Cup", Country: "South Africa"},
		{Code: "RUG_PROD2", Name: "Pro D2", Country: "France"},
		{Code: "INT_RUG_WC", Name: "Rugby World Cup", Country: "World"},
	},
	SportBasketball: {
		{Code: "NBA", Name: "NBA", Country: "USA/Canada"},
		{Code: "EURO_EL", Name: "EuroLeague", Country: "Europe"},
		{Code: "EURO_EC", Name: "EuroCup", Country: "Europe"},
		{Code: "ESP_ACB", Name: "Liga ACB", Country: "Spain"},
		{Code: "FRA_LNB", Name: "LNB Pro A", Country: "France"},
		{Code: "GER_BBL", Name: "BBL", Country: "Germany"},
		{Code: "ITA_LBA", Name: "LBA Serie A", Country: "Italy"},
		{Code: "ADR_ABA", Name: "ABA League", Country: "Balkans"},
		{Code: "FIBA_U19", Name: "FIBA U19 Basketball World Cup", Country: "World"},
		{Code: "FIBA_U17", Name: "FIBA U17 Basketball World Cup", Country: "World"},
		{Code: "INT_BASK_WC", Name: "FIBA Basketball World Cup", Country: "World"},
	},
}

var competitionIndex = buildCompetitionIndex()

func buildCompetitionIndex() map[string]Competition {
	index := make(map[string]Competition)
	for sport, comps := range competitionsBySport {
		for _, c := range comps {
			c.Sport = sport
			index[strings.ToUpper(c.Code)] = c
		}
	}
	return index
}

// CompetitionsFor returns the catalog of competitions for a sport
func CompetitionsFor(sport Sport) []Competition {
	comps := competitionsBySport[sport]
	out := make([]Competition, len(comps))
	for i, c := range comps {
		c.Sport = sport
		out[i] = c
	}
	return out
}

// LookupCompetition finds a competition by code, case-insensitively
func LookupCompetition(code string) (Competition, bool) {
	c, ok := competitionIndex[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// IsValidCompetition returns true if the code belongs to the sport's catalog
func IsValidCompetition(sport Sport, code string) bool {
	c, ok := LookupCompetition(code)
	return ok && c.Sport == sport
}
