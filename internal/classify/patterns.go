package classify

import "github.com/pocketledger/backend/internal/ingest"

// Keyword tables for the built-in heuristics. These are static data loaded
// once at process start, evaluation order of the chains is fixed in
// applyHeuristics. Patterns containing ".*" are mini-regexes, see
// matchPattern.

var transferPatterns = []string{
	"TRANSFER",
	"XFER",
	"ZELLE",
	"VENMO CASHOUT",
	"VENMO PAYMENT",
	"WIRE OUT",
	"WIRE IN",
	"ACH PMT.*SAVINGS",
}

var ccPaymentPatterns = []string{
	"AUTOPAY",
	"PAYMENT THANK YOU",
	"THANK YOU FOR YOUR PAYMENT",
	"CARDMEMBER SERV",
	"ONLINE PAYMENT.*CHASE",
	"ONLINE PAYMENT.*CITI",
	"PAYMENT.*CREDIT CRD",
	"CAPITAL ONE.*PMT",
	"DISCOVER.*PAYMENT",
	"AMEX EPAYMENT",
}

var cashWithdrawalPatterns = []string{
	"ATM WITHDRAWAL",
	"ATM ",
	"CASH ADVANCE",
	"CASH WITHDRAWAL",
}

// Gated on a positive amount, a negative "refund" is spend.
var refundPatterns = []string{
	"REFUND",
	"REVERSAL",
	"RETURNED PURCHASE",
	"CREDIT ADJUSTMENT",
}

var feeInterestPatterns = []string{
	"INTEREST CHARGE",
	"INTEREST PAYMENT",
	"INTEREST EARNED",
	"SERVICE FEE",
	"SERVICE CHARGE",
	"MONTHLY FEE",
	"ANNUAL FEE",
	"LATE FEE",
	"OVERDRAFT",
	"FINANCE CHARGE",
	"FOREIGN TRANSACTION FEE",
}

// Gated on a positive amount.
var incomePatterns = []string{
	"PAYROLL",
	"DIRECT DEP",
	"DIRECT DEPOSIT",
	"SALARY",
	"PAYCHECK",
	"EMPLOYER",
	"IRS TREAS",
	"US TREASURY",
	"DIVIDEND",
}

// categoryEntry maps a category name to its pattern list.
type categoryEntry struct {
	Name     string
	Patterns []string
}

// categoryTable is scanned in order, the first category whose pattern list
// matches wins. Table order is significant: specific categories come before
// the ones with generic patterns, e.g. "UBER EATS" must be seen before the
// transport table matches "UBER".
var categoryTable = []categoryEntry{
	{"Coffee & Drinks", []string{
		"STARBUCKS", "DUNKIN", "PEETS", "PHILZ", "BLUE BOTTLE", "COFFEE",
		"CAFE", "BOBA", "TEAHOUSE",
	}},
	{"Groceries", []string{
		"TRADER JOE", "WHOLE FOODS", "WHOLEFDS", "SAFEWAY", "KROGER",
		"ALDI", "WEGMANS", "PUBLIX", "H MART", "FOOD LION", "GROCERY",
		"GROCER", "SUPERMARKET", "MARKET BASKET", "FRESH MARKET",
	}},
	{"Restaurants", []string{
		"UBER EATS", "DOORDASH", "GRUBHUB", "POSTMATES", "SEAMLESS",
		"MCDONALD", "CHIPOTLE", "CHICK-FIL-A", "CHICKFILA", "PANERA",
		"WENDY", "TACO BELL", "FIVE GUYS", "SHAKE SHACK", "PIZZA",
		"SUSHI", "RAMEN", "RESTAURANT", "GRILL", "BISTRO", "DINER",
	}},
	{"Transport", []string{
		"UBER", "LYFT", "SHELL", "CHEVRON", "EXXON", "MOBIL", "BP#",
		"SUNOCO", "76 ", "ARCO", "GAS STATION", "FUEL", "PARKING",
		"PARKMOBILE", "TOLL", "E-ZPASS", "EZPASS", "MTA", "BART",
		"TRANSIT", "METRO", "AMTRAK",
	}},
	{"Shopping", []string{
		"AMAZON", "AMZN", "TARGET", "WALMART", "WAL-MART", "COSTCO",
		"BEST BUY", "EBAY", "ETSY", "NORDSTROM", "MACY", "TJ MAXX",
		"MARSHALLS", "NIKE", "APPLE STORE",
	}},
	{"Entertainment & Subscriptions", []string{
		"NETFLIX", "SPOTIFY", "HULU", "DISNEY", "HBO", "MAX.COM",
		"PARAMOUNT", "PEACOCK", "APPLE.COM/BILL", "PRIME VIDEO",
		"AUDIBLE", "KINDLE", "YOUTUBE", "TWITCH", "STEAM", "PLAYSTATION",
		"NINTENDO", "XBOX", "AMC ", "CINEMA", "REGAL", "TICKETMASTER",
	}},
	{"Health & Fitness", []string{
		"CVS", "WALGREENS", "RITE AID", "PHARMACY", "GYM", "FITNESS",
		"PELOTON", "CLASSPASS", "DENTAL", "CLINIC", "MEDICAL", "OPTOMETR",
	}},
	{"Utilities & Bills", []string{
		"COMCAST", "XFINITY", "SPECTRUM", "VERIZON", "T-MOBILE", "TMOBILE",
		"AT&T", "PG&E", "CON EDISON", "CONED", "DUKE ENERGY", "ELECTRIC",
		"WATER BILL", "SEWER", "INTERNET", "UTILITY", "UTILITIES",
	}},
	{"Home", []string{
		"HOME DEPOT", "LOWES", "LOWE'S", "IKEA", "WAYFAIR", "ACE HARDWARE",
		"RENT", "PROPERTY MGMT", "HOA DUES",
	}},
	{"Travel", []string{
		"AIRBNB", "VRBO", "HOTEL", "MARRIOTT", "HILTON", "HYATT",
		"DELTA AIR", "UNITED AIR", "AMERICAN AIR", "SOUTHWES", "ALASKA AIR",
		"JETBLUE", "EXPEDIA", "BOOKING.COM", "KAYAK", "HERTZ", "AVIS",
		"ENTERPRISE RENT",
	}},
	{"Pets", []string{
		"CHEWY", "PETCO", "PETSMART", "VETERINAR", "VET CLINIC",
	}},
	{"Education", []string{
		"UDEMY", "COURSERA", "SKILLSHARE", "TUITION", "UNIVERSITY",
		"COLLEGE", "BOOKSTORE",
	}},
	{"Insurance", []string{
		"GEICO", "PROGRESSIVE", "ALLSTATE", "STATE FARM", "INSURANCE",
		"INSURNCE",
	}},
	{"Charity", []string{
		"DONATION", "GOFUNDME", "RED CROSS", "UNICEF", "CHARITY",
	}},
}

// defaultCategory is used when no category pattern matches a purchase.
const defaultCategory = "Uncategorized"

// categorize resolves the category for a purchase row via the category
// pattern table. The first matching category wins, falling back to
// defaultCategory.
func categorize(row ingest.ParsedRow) string {
	for _, entry := range categoryTable {
		if matchesRow(row, entry.Patterns) {
			return entry.Name
		}
	}

	return defaultCategory
}
