package domain

import identitydomain "internship-portal/backend/internal/identity/domain"

// DemoProfiles returns fresh copies of the canned profiles of the demo accounts, keyed by email.
func DemoProfiles() map[string]*Profile {
	student := &Profile{
		ID:        "demo-student",
		Email:     "user@example.com",
		Name:      "Jean Dupont",
		FirstName: "Jean",
		LastName:  "Dupont",
		Avatar:    "JD",
		Phone:     "+33 6 12 34 56 78",
		Bio:       "Étudiant en informatique passionné par le développement web",
		Role:      identitydomain.RoleStudent,
		Extension: StudentExtension{
			Specialization:       "Informatique",
			University:           "Université Paris 1",
			CVURL:                "https://example.com/cv-jean-dupont.pdf",
			GitHub:               "https://github.com/jeandupont",
			LinkedIn:             "https://linkedin.com/in/jeandupont",
			InternshipsCompleted: 2,
			ReportsSubmitted:     1,
		},
		Ratings: []Rating{
			{ID: "eval1", Author: "TechCorp", Rating: 5, Comment: "Excellent stagiaire, très motivé", Date: "2024-01-15"},
			{ID: "eval2", Author: "WebDev Inc", Rating: 4.5, Comment: "Très bonne collaboration", Date: "2024-02-20"},
		},
		IsDemo: true,
	}
	company := &Profile{
		ID:     "demo-company",
		Email:  "entreprise@example.com",
		Name:   "TechCorp",
		Avatar: "TC",
		Phone:  "+33 1 23 45 67 89",
		Bio:    "Entreprise spécialisée dans les solutions web innovantes",
		Role:   identitydomain.RoleCompany,
		Extension: CompanyExtension{
			CompanyName:      "TechCorp",
			Industry:         "Technologie & Développement",
			ValidationStatus: "validated",
			Location:         "Paris, France",
			OffersPublished:  5,
			StudentsHired:    12,
		},
		Ratings: []Rating{
			{ID: "eval1", Author: "Jean Dupont", Rating: 5, Comment: "Entreprise exceptionnelle", Date: "2024-01-15"},
			{ID: "eval2", Author: "Marie Martin", Rating: 4.5, Comment: "Bon environnement de travail", Date: "2024-02-20"},
		},
		IsDemo: true,
	}
	admin := &Profile{
		ID:     "demo-admin",
		Email:  "admin@example.com",
		Name:   "Administrateur",
		Avatar: "AD",
		Phone:  "+33 1 98 76 54 32",
		Bio:    "Responsable de la coordination des stages au sein de l'établissement",
		Role:   identitydomain.RoleAdmin,
		Extension: AdminExtension{
			Department:  "Gestion des Stages",
			AccessLevel: DefaultAccessLevel,
			School:      "Université Paris 1",
		},
		Ratings: []Rating{},
		IsDemo:  true,
	}
	out := map[string]*Profile{}
	for _, p := range []*Profile{student, company, admin} {
		p.AverageRating = Average(p.Ratings)
		out[p.Email] = p
	}
	return out
}
