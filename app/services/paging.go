package services

// pageBounds computes pagination arithmetic shared by the list views:
// total page count (never below 1), the clamped current page and the
// slice bounds for that page.
func pageBounds(total, pageSize, page int) (start, end, totalPages, current int) {
	if pageSize < 1 {
		pageSize = 1
	}
	totalPages = (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	current = page
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	start = (current - 1) * pageSize
	end = start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return start, end, totalPages, current
}
