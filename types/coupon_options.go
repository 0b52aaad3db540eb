package types

// CouponOption is one redeemable entry in the fixed rewards catalog.
type CouponOption struct {
	Brand      string `json:"brand"`
	Name       string `json:"name"`
	PointsCost int    `json:"pointsCost"`
	Value      int    `json:"value"`
	Emoji      string `json:"emoji"`
}

func GetCouponOptions() []CouponOption {
	return []CouponOption{
		{Brand: "swiggy", Name: "Swiggy", PointsCost: 100, Value: 50, Emoji: "🍔"},
		{Brand: "zomato", Name: "Zomato", PointsCost: 100, Value: 50, Emoji: "🍕"},
		{Brand: "flipkart", Name: "Flipkart", PointsCost: 200, Value: 100, Emoji: "🛍️"},
		{Brand: "amazon", Name: "Amazon", PointsCost: 200, Value: 100, Emoji: "📦"},
		{Brand: "swiggy", Name: "Swiggy Premium", PointsCost: 250, Value: 150, Emoji: "🍔"},
		{Brand: "zomato", Name: "Zomato Premium", PointsCost: 250, Value: 150, Emoji: "🍕"},
		{Brand: "flipkart", Name: "Flipkart Premium", PointsCost: 500, Value: 250, Emoji: "🛍️"},
		{Brand: "amazon", Name: "Amazon Premium", PointsCost: 500, Value: 250, Emoji: "📦"},
	}
}

// FindCouponOption matches the redemption request against the catalog. The
// (brand, pointsCost, value) triple must match an entry exactly.
func FindCouponOption(brand string, pointsCost, value int) (CouponOption, bool) {
	for _, opt := range GetCouponOptions() {
		if opt.Brand == brand && opt.PointsCost == pointsCost && opt.Value == value {
			return opt, true
		}
	}
	return CouponOption{}, false
}
