package pagedmem

// Transfer copies n bytes from src to dst with memmove semantics: the result
// is correct even if both ranges overlap.
//
// Ranges that each sit inside a single page and provably do not overlap are
// moved with one block copy. Otherwise the bytes are walked page by page,
// from the highest byte down if dst lies inside [src, src+n), and from the
// lowest byte up in every other case.
func (a *Arena) Transfer(src, dst, n int64) error {
	pages, err := a.span(src, n)
	if err != nil {
		return err
	}
	if _, err := a.span(dst, n); err != nil {
		return err
	}
	if n == 0 || src == dst {
		return nil
	}

	si, so := locate(src)
	di, do := locate(dst)

	switch {
	case int64(so)+n <= PageSize && int64(do)+n <= PageSize && disjoint(si, so, di, do, int(n)):
		copy(pages[di].data[do:do+int(n)], pages[si].data[so:so+int(n)])
		a.metrics.RecordTransfer(n, TransferDirect)
	case src < dst && dst < src+n:
		transferBackward(pages, src, dst, n)
		a.metrics.RecordTransfer(n, TransferBackward)
	default:
		transferForward(pages, src, dst, n)
		a.metrics.RecordTransfer(n, TransferForward)
	}

	return nil
}

// disjoint reports whether two single-page ranges of length n cannot share a byte.
// Distinct pages are distinct native blocks.
func disjoint(si, so, di, do, n int) bool {
	if si != di {
		return true
	}
	return so+n <= do || do+n <= so
}

// transferForward copies runs that stay within both the current source and
// destination page, stepping to the next page on overflow. It is safe for
// overlapping ranges with dst < src.
func transferForward(pages []*Page, src, dst, n int64) {
	si, so := locate(src)
	di, do := locate(dst)

	for n > 0 {
		m := min(n, int64(PageSize-so), int64(PageSize-do))
		copy(pages[di].data[do:do+int(m)], pages[si].data[so:so+int(m)])
		n -= m

		so += int(m)
		if so == PageSize {
			si++
			so = 0
		}
		do += int(m)
		if do == PageSize {
			di++
			do = 0
		}
	}
}

// transferBackward copies runs from the end of both ranges towards their
// start, stepping to the previous page on underflow. It is safe for
// overlapping ranges with src < dst.
func transferBackward(pages []*Page, src, dst, n int64) {
	// Exclusive end positions; an offset of 0 means "end of the previous page".
	si, so := locate(src + n)
	di, do := locate(dst + n)

	for n > 0 {
		if so == 0 {
			si--
			so = PageSize
		}
		if do == 0 {
			di--
			do = PageSize
		}

		m := min(n, int64(so), int64(do))
		copy(pages[di].data[do-int(m):do], pages[si].data[so-int(m):so])
		n -= m

		so -= int(m)
		do -= int(m)
	}
}
