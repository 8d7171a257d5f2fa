package sources

import (
	"time"

	"github.com/use-agent/harvest/models"
)

func steamDescriptor() models.SourceDescriptor {
	return models.SourceDescriptor{
		ID:                   "steam-specials",
		DisplayName:          "Steam specials",
		Description:          "Discounted games from the Steam store, rendered in a headless browser.",
		SourceURL:            "https://store.steampowered.com/specials",
		Enabled:              true,
		SupportedFormats:     allFormats,
		DefaultFormat:        models.FormatJSON,
		EstimatedRecordCount: 50,
		Timeout:              60 * time.Second,
		DefaultHeaders: map[string]string{
			"Accept-Language": "en-US,en;q=0.9",
			// Skips the age gate and pins prices to one currency.
			"Cookie": "birthtime=568022401; lastagecheckage=1-January-1988; Steam_Language=english",
		},
	}
}

// steamCandidates are tried in order; the store has shipped all of these
// layouts and still serves different ones per region.
var steamCandidates = []Candidate{
	{
		Item:     "div[class*='salepreviewwidgets_SaleItemBrowserRow']",
		Name:     "div[class*='salepreviewwidgets_StoreSaleWidgetTitle']",
		Price:    "div[class*='salepreviewwidgets_StoreOriginalPrice']",
		Discount: "div[class*='salepreviewwidgets_StoreSaleDiscountBox']",
		Platform: "svg[class*='SaleItemPlatform'], span[class*='platform']",
	},
	{
		Item:     "#search_resultsRows > a",
		Name:     "span.title",
		Price:    "div.discount_original_price",
		Discount: "div.discount_pct",
		Platform: "span.platform_img",
	},
	{
		Item:     "a.tab_item",
		Name:     "div.tab_item_name",
		Price:    "div.discount_original_price",
		Discount: "div.discount_pct",
		Platform: "span.platform_img",
	},
}
