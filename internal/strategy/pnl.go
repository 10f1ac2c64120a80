package strategy

// NetCredit is the premium received at entry minus the premium paid:
// (short call - long call) + (short put - long put).
func NetCredit(book PositionBook) float64 {
	return (book[LegShortCall] - book[LegLongCall]) + (book[LegShortPut] - book[LegLongPut])
}

// LegPnL is one leg's mark-to-market contribution per unit. Short legs
// profit when the price falls, long legs when it rises.
func LegPnL(role LegRole, entry, current float64) float64 {
	if role.IsShort() {
		return entry - current
	}
	return current - entry
}

// MarkToMarket sums the four per-unit leg contributions against a usable
// quote. The caller applies lot scaling; the backtest reports this value
// unscaled.
func MarkToMarket(book PositionBook, q Quote) float64 {
	var total float64
	for _, role := range Legs() {
		total += LegPnL(role, book[role], *q.Legs[role])
	}
	return total
}
