package extract

// sponsoredAdType marks the content module variant that carries sponsored
// product placements.
const sponsoredAdType = "SPONSORED_PRODUCTS"

// SponsoredLinks scans the payload's content modules for sponsored-product
// blocks and records one link per advertised product. Modules of any other
// shape are ignored.
func SponsoredLinks(payload map[string]any, mainProductID string) []SponsoredLink {
	var links []SponsoredLink

	for _, mod := range digList(payload, "contentLayout", "modules") {
		module, ok := mod.(map[string]any)
		if !ok {
			continue
		}
		ad := digObject(module, "configs", "ad", "adContent")
		if ad == nil || stringValue(ad["type"]) != sponsoredAdType {
			continue
		}
		for _, entry := range digList(ad, "data", "products") {
			sp, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			links = append(links, SponsoredLink{
				MainProductID: mainProductID,
				SponsoredProductID: firstString(sp,
					[]string{"usItemId"},
					[]string{"itemId"},
				),
				SponsoredName:  firstString(sp, []string{"name"}),
				SponsoredBrand: firstString(sp, []string{"brand"}),
			})
		}
	}

	return links
}
