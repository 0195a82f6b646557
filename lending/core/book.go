package core

// Book is the projected catalog entry of a title.
type Book struct {
	BookID          BookIDString
	ISBN            string
	Title           string
	Authors         []string
	PublicationYear int
}

// ProjectBook finds the catalog entry of bookID in history.
func ProjectBook(history DomainEvents, bookID string) (Book, bool) {
	for _, event := range history {
		if e, ok := event.(BookAddedToCatalog); ok && e.BookID == bookID {
			return Book{
				BookID:          e.BookID,
				ISBN:            e.ISBN,
				Title:           e.Title,
				Authors:         e.Authors,
				PublicationYear: e.PublicationYear,
			}, true
		}
	}

	return Book{}, false
}
