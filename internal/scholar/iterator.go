package scholar

import "context"

// Iterator walks search results lazily, fetching the next page only when
// the current one is used up.
type Iterator struct {
	client *Client
	query  string
	start  int
	page   []Publication
	pos    int
	more   bool
}

// Next returns the next publication, or ErrExhausted after the last one.
func (it *Iterator) Next(ctx context.Context) (*Publication, error) {
	for it.pos >= len(it.page) {
		if !it.more {
			return nil, ErrExhausted
		}
		if err := it.fetchPage(ctx); err != nil {
			return nil, err
		}
	}
	pub := &it.page[it.pos]
	it.pos++
	return pub, nil
}

func (it *Iterator) fetchPage(ctx context.Context) error {
	pubs, hasNext, err := it.client.searchPage(ctx, it.query, it.start)
	if err != nil {
		return err
	}
	it.page = pubs
	it.pos = 0
	it.start += len(pubs)
	it.more = hasNext && len(pubs) > 0
	return nil
}
