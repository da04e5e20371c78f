package storage

import "github.com/lehigh-university-libraries/portal/internal/models"

// Fixtures returns the seed catalog. "Clean Code" is the only title with no free copies.
func Fixtures() []models.Book {
	return []models.Book{
		{
			ID:              "1",
			Title:           "Introduction to Algorithms",
			Author:          "Thomas H. Cormen",
			CoverImage:      "https://source.unsplash.com/random/300x400/?book,algorithm",
			AvailableCopies: 3,
			TotalCopies:     5,
			Published:       "2009",
			Publisher:       "MIT Press",
			Category:        "Computer Science",
			ISBN:            "978-0262033848",
			Description:     "A comprehensive introduction to the modern study of computer algorithms, covering a broad range of algorithms in depth while keeping their design and analysis accessible.",
			PageCount:       1312,
			Language:        "English",
			Subjects:        []string{"Computer Science", "Algorithms", "Data Structures", "Programming"},
		},
		{
			ID:              "2",
			Title:           "Clean Code: A Handbook of Agile Software Craftsmanship",
			Author:          "Robert C. Martin",
			CoverImage:      "https://source.unsplash.com/random/300x400/?book,code",
			AvailableCopies: 0,
			TotalCopies:     3,
			Published:       "2008",
			Publisher:       "Prentice Hall",
			Category:        "Software Development",
			ISBN:            "978-0132350884",
			Description:     "Principles, patterns and practices of writing clean code, with case studies of cleaning up real code bases.",
			PageCount:       464,
			Language:        "English",
			Subjects:        []string{"Software Development", "Refactoring", "Agile"},
		},
		{
			ID:              "3",
			Title:           "Design Patterns: Elements of Reusable Object-Oriented Software",
			Author:          "Erich Gamma",
			CoverImage:      "https://source.unsplash.com/random/300x400/?book,design",
			AvailableCopies: 2,
			TotalCopies:     4,
			Published:       "1994",
			Publisher:       "Addison-Wesley",
			Category:        "Software Development",
			ISBN:            "978-0201633610",
			Description:     "A catalog of twenty-three design patterns for object-oriented software, each with its intent, structure and consequences.",
			PageCount:       395,
			Language:        "English",
			Subjects:        []string{"Software Development", "Design Patterns", "Object-Oriented Programming"},
		},
		{
			ID:              "4",
			Title:           "The Pragmatic Programmer",
			Author:          "Andrew Hunt",
			CoverImage:      "https://source.unsplash.com/random/300x400/?book,programming",
			AvailableCopies: 1,
			TotalCopies:     2,
			Published:       "1999",
			Publisher:       "Addison-Wesley",
			Category:        "Software Development",
			ISBN:            "978-0201616224",
			Description:     "Practical advice on the craft of programming, from personal responsibility to architecture.",
			PageCount:       352,
			Language:        "English",
			Subjects:        []string{"Software Development", "Programming"},
		},
		{
			ID:              "5",
			Title:           "Artificial Intelligence: A Modern Approach",
			Author:          "Stuart Russell",
			CoverImage:      "https://source.unsplash.com/random/300x400/?book,ai",
			AvailableCopies: 4,
			TotalCopies:     6,
			Published:       "2020",
			Publisher:       "Pearson",
			Category:        "Computer Science",
			ISBN:            "978-0134610993",
			Description:     "The leading textbook in artificial intelligence, covering search, reasoning, learning and robotics.",
			PageCount:       1136,
			Language:        "English",
			Subjects:        []string{"Computer Science", "Artificial Intelligence", "Machine Learning"},
		},
		{
			ID:              "6",
			Title:           "Database Systems: The Complete Book",
			Author:          "Hector Garcia-Molina",
			CoverImage:      "https://source.unsplash.com/random/300x400/?book,database",
			AvailableCopies: 1,
			TotalCopies:     4,
			Published:       "2008",
			Publisher:       "Pearson",
			Category:        "Computer Science",
			ISBN:            "978-0131873254",
			Description:     "Database design, use and implementation, from the relational model to query processing and transactions.",
			PageCount:       1248,
			Language:        "English",
			Subjects:        []string{"Computer Science", "Databases"},
		},
	}
}
