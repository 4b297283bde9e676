package service

import "github.com/vzy-dashboard/backend/internal/models"

// PlatformRule maps a platform to the substrings that identify it. Patterns
// are upper case.
type PlatformRule struct {
	Platform models.Platform
	Patterns []string
}

// Taxonomy is the classification setup for one run: the seeded matrix rows,
// the tracked statuses and the ordered platform rules.
type Taxonomy struct {
	Platforms []models.Platform
	Statuses  []string
	Rules     []PlatformRule
}

var defaultPlatforms = []models.Platform{
	models.PlatformAndroid,
	models.PlatformATV,
	models.PlatformCMS,
	models.PlatformCMSAdaptor,
	models.PlatformCMSDashboard,
	models.PlatformDishIT,
	models.PlatformIOS,
	models.PlatformKaltura,
	models.PlatformLGTV,
	models.PlatformMobile,
	models.PlatformSamTV,
	models.PlatformWeb,
}

var defaultStatuses = []string{"OPEN", "IN PROGRESS", "REOPENED", "IN REVIEW", "ISSUE ACCEPTED", "PARKED"}

// Rule order matters: "ANDROID TV" has to hit ATV before ANDROID, "CMS ADAPTOR"
// has to hit CMS Adaptor before CMS.
var defaultRules = []PlatformRule{
	{models.PlatformCMSAdaptor, []string{"CMS ADAPTOR", "CMS_ADAPTOR", "CMSADAPTOR"}},
	{models.PlatformCMSDashboard, []string{"CMS DASHBOARD", "CMS_DASHBOARD", "CMSDASHBOARD"}},
	{models.PlatformKaltura, []string{"KALTURA"}},
	{models.PlatformDishIT, []string{"DISHIT", "DISH IT", "DISH_IT"}},
	{models.PlatformLGTV, []string{"LG_TV", "LGTV", "LG TV", "WEBOS", "LG-TV"}},
	{models.PlatformSamTV, []string{"SAM_TV", "SAMTV", "SAM TV", "SAMSUNG TV", "SAMSUNG_TV", "TIZEN", "SAM-TV"}},
	{models.PlatformATV, []string{"ATV", "ANDROID TV", "ANDROID_TV", "ANDROIDTV", "FIRE TV", "FIRETV", "FIRE_TV"}},
	{models.PlatformMobile, []string{"MOBILE"}},
	{models.PlatformAndroid, []string{"ANDROID"}},
	{models.PlatformIOS, []string{"IOS", "APPLE", "IPHONE", "IPAD"}},
	{models.PlatformWeb, []string{"WEB"}},
	{models.PlatformCMS, []string{"CMS"}},
}

// DefaultTaxonomy returns a fresh copy of the dashboard taxonomy.
func DefaultTaxonomy() Taxonomy {
	rules := make([]PlatformRule, len(defaultRules))
	for i, r := range defaultRules {
		rules[i] = PlatformRule{Platform: r.Platform, Patterns: append([]string(nil), r.Patterns...)}
	}
	return Taxonomy{
		Platforms: append([]models.Platform(nil), defaultPlatforms...),
		Statuses:  append([]string(nil), defaultStatuses...),
		Rules:     rules,
	}
}
