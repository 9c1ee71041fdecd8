package models

// prefectureNames maps region codes from the diagnosis flow to display names
// as they appear in grant postings.
var prefectureNames = map[string]string{
	"hokkaido":  "北海道",
	"aomori":    "青森県",
	"iwate":     "岩手県",
	"miyagi":    "宮城県",
	"akita":     "秋田県",
	"yamagata":  "山形県",
	"fukushima": "福島県",
	"ibaraki":   "茨城県",
	"tochigi":   "栃木県",
	"gunma":     "群馬県",
	"saitama":   "埼玉県",
	"chiba":     "千葉県",
	"tokyo":     "東京都",
	"kanagawa":  "神奈川県",
	"niigata":   "新潟県",
	"toyama":    "富山県",
	"ishikawa":  "石川県",
	"fukui":     "福井県",
	"yamanashi": "山梨県",
	"nagano":    "長野県",
	"gifu":      "岐阜県",
	"shizuoka":  "静岡県",
	"aichi":     "愛知県",
	"mie":       "三重県",
	"shiga":     "滋賀県",
	"kyoto":     "京都府",
	"osaka":     "大阪府",
	"hyogo":     "兵庫県",
	"nara":      "奈良県",
	"wakayama":  "和歌山県",
	"tottori":   "鳥取県",
	"shimane":   "島根県",
	"okayama":   "岡山県",
	"hiroshima": "広島県",
	"yamaguchi": "山口県",
	"tokushima": "徳島県",
	"kagawa":    "香川県",
	"ehime":     "愛媛県",
	"kochi":     "高知県",
	"fukuoka":   "福岡県",
	"saga":      "佐賀県",
	"nagasaki":  "長崎県",
	"kumamoto":  "熊本県",
	"oita":      "大分県",
	"miyazaki":  "宮崎県",
	"kagoshima": "鹿児島県",
	"okinawa":   "沖縄県",
}

// tokyoWards lists the 23 special wards. Tokyo postings frequently name the
// ward instead of the prefecture, so the region predicate has to match on
// either.
var tokyoWards = []string{
	"千代田区", "中央区", "港区", "新宿区", "文京区", "台東区", "墨田区", "江東区",
	"品川区", "目黒区", "大田区", "世田谷区", "渋谷区", "中野区", "杉並区", "豊島区",
	"北区", "荒川区", "板橋区", "練馬区", "足立区", "葛飾区", "江戸川区",
}

// PrefectureName resolves a region code to its display name. Empty string
// means the code is unknown or "any".
func PrefectureName(code string) string {
	return prefectureNames[code]
}

// RegionSubstrings returns the set of substrings that count as a location
// match for the given region code: the prefecture display name, plus the
// enumerated special wards for the Tokyo metropolitan region.
func RegionSubstrings(code string) []string {
	name := prefectureNames[code]
	if name == "" {
		return nil
	}
	subs := []string{name}
	if code == "tokyo" {
		subs = append(subs, tokyoWards...)
	}
	return subs
}
