package strategy

// Query builders per destination type. Web queries chase editorial,
// cinematic shots; curated queries chase landmarks the place catalog
// actually knows about.

func countryWebQueries(name string) []string {
	return []string{
		name + " cinematic landscape",
		name + " iconic scenery",
		name + " travel photography",
		name + " aerial coastline mountains cityscape",
		name + " solo travel photography",
	}
}

func countryCuratedQueries(name string) []string {
	return []string{
		name,
		name + " famous landmark",
		name + " scenic viewpoint",
	}
}

func cityWebQueries(name, countryName string) []string {
	ctx := regionSuffix(countryName)
	return []string{
		name + ctx + " skyline blue hour",
		name + ctx + " viewpoint panoramic",
		name + ctx + " travel editorial",
		name + ctx + " street photography",
	}
}

func cityCuratedQueries(name, countryName string) []string {
	ctx := regionSuffix(countryName)
	return []string{
		name + ctx + " city viewpoint",
		name + ctx + " landmark",
		name + ctx + " old town",
		name + ctx + " skyline",
	}
}

func neighborhoodWebQueries(name, cityName string) []string {
	ctx := regionSuffix(cityName)
	return []string{
		name + ctx + " streets",
		name + ctx + " cafes",
		name + ctx + " architecture",
		name + ctx + " neighborhood vibe",
	}
}

func neighborhoodCuratedQueries(name, cityName string) []string {
	ctx := regionSuffix(cityName)
	return []string{
		name + ctx + " point of interest",
		name + ctx + " park",
		name + ctx + " cafe street",
		name + ctx,
	}
}

func regionSuffix(region string) string {
	if region == "" {
		return ""
	}
	return " " + region
}
