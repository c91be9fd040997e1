package pricing

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Locales supported for storefront money-saving messages. Korean buyers and
// Chinese buyers each see their own copy; everyone else gets English.
var (
	supportedLocales = []language.Tag{
		language.English,
		language.Korean,
		language.SimplifiedChinese,
	}
	localeMatcher = language.NewMatcher(supportedLocales)
	bundleCatalog = buildBundleCatalog()
)

const (
	msgBundleDiscount = "Bundle with the same seller and save %d%% on shipping"
	msgBundleFree     = "Shipping is free for this bundle"
	msgBundleNone     = "Add more items from this seller to unlock a shipping discount"
)

func buildBundleCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))

	mustSet(b, language.English, msgBundleDiscount, msgBundleDiscount)
	mustSet(b, language.English, msgBundleFree, msgBundleFree)
	mustSet(b, language.English, msgBundleNone, msgBundleNone)

	mustSet(b, language.Korean, msgBundleDiscount, "같은 판매자 상품을 묶음 배송하면 배송비 %d%%를 아낄 수 있어요")
	mustSet(b, language.Korean, msgBundleFree, "이 묶음은 배송비가 무료예요")
	mustSet(b, language.Korean, msgBundleNone, "이 판매자의 상품을 더 담으면 배송비 할인을 받을 수 있어요")

	mustSet(b, language.SimplifiedChinese, msgBundleDiscount, "同一卖家商品合并发货可节省 %d%% 运费")
	mustSet(b, language.SimplifiedChinese, msgBundleFree, "该合并订单免运费")
	mustSet(b, language.SimplifiedChinese, msgBundleNone, "再添加该卖家的商品即可享受运费折扣")

	return b
}

func mustSet(b *catalog.Builder, tag language.Tag, key, msg string) {
	if err := b.SetString(tag, key, msg); err != nil {
		panic(fmt.Sprintf("bundle catalog: %v", err))
	}
}

// bundleMessage renders the localized discount hint for a group
func bundleMessage(lang language.Tag, percent int) string {
	tag, _, _ := localeMatcher.Match(lang)
	p := message.NewPrinter(tag, message.Catalog(bundleCatalog))

	switch {
	case percent >= 100:
		return p.Sprintf(msgBundleFree)
	case percent > 0:
		return p.Sprintf(msgBundleDiscount, percent)
	default:
		return p.Sprintf(msgBundleNone)
	}
}

// MatchLocale resolves an Accept-Language header value to a supported tag
func MatchLocale(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	tag, _, _ := localeMatcher.Match(tags...)
	return tag
}
