package models

// DemoWorksheet returns the built-in sample worksheet: two sections of five
// questions each, loadable without the remote parser. A fresh value is built
// on every call so sessions never share state.
func DemoWorksheet() *Worksheet {
	return &Worksheet{
		ID:          "demo",
		Title:       "Spanish Basics",
		Description: "Introductory Spanish practice worksheet",
		Sections: []Section{
			{
				ID:           "demo-s1",
				Title:        "Vocabulario",
				Instructions: "Choose the best answer for each question.",
				Questions: []Question{
					{
						ID:     "demo-q1",
						Type:   MultipleChoice,
						Prompt: "How do you say \"hello\" in Spanish?",
						Options: []Option{
							{ID: "a", Text: "Adiós"},
							{ID: "b", Text: "Hola"},
							{ID: "c", Text: "Gracias"},
							{ID: "d", Text: "Por favor"},
						},
						AnswerKey: AnswerKey{"b"},
					},
					{
						ID:     "demo-q2",
						Type:   MultipleChoice,
						Prompt: "What does \"gato\" mean?",
						Options: []Option{
							{ID: "a", Text: "Dog"},
							{ID: "b", Text: "Bird"},
							{ID: "c", Text: "Cat"},
							{ID: "d", Text: "Fish"},
						},
						AnswerKey: AnswerKey{"c"},
					},
					{
						ID:     "demo-q3",
						Type:   MultipleChoice,
						Prompt: "Which word means \"thank you\"?",
						Options: []Option{
							{ID: "a", Text: "Gracias"},
							{ID: "b", Text: "Perdón"},
							{ID: "c", Text: "Salud"},
							{ID: "d", Text: "Bien"},
						},
						AnswerKey: AnswerKey{"a"},
					},
					{
						ID:     "demo-q4",
						Type:   MultipleChoice,
						Prompt: "\"Libro\" translates to:",
						Options: []Option{
							{ID: "a", Text: "Table"},
							{ID: "b", Text: "Book"},
							{ID: "c", Text: "Pen"},
							{ID: "d", Text: "Chair"},
						},
						AnswerKey: AnswerKey{"b"},
					},
					{
						ID:     "demo-q5",
						Type:   MultipleChoice,
						Prompt: "Which of these is a number?",
						Options: []Option{
							{ID: "a", Text: "Rojo"},
							{ID: "b", Text: "Lunes"},
							{ID: "c", Text: "Ocho"},
							{ID: "d", Text: "Perro"},
						},
						AnswerKey: AnswerKey{"c"},
					},
				},
			},
			{
				ID:           "demo-s2",
				Title:        "Completa la frase",
				Instructions: "Fill in the blank with the correct word.",
				Questions: []Question{
					{
						ID:        "demo-q6",
						Type:      FillBlank,
						Prompt:    "___ un placer conocerte. (It is a pleasure to meet you.)",
						AnswerKey: AnswerKey{"Es"},
					},
					{
						ID:        "demo-q7",
						Type:      FillBlank,
						Prompt:    "Yo ___ estudiante. (I am a student.)",
						AnswerKey: AnswerKey{"soy", "Soy"},
					},
					{
						ID:        "demo-q8",
						Type:      FillBlank,
						Prompt:    "Ella ___ de México. (She is from Mexico.)",
						AnswerKey: AnswerKey{"es"},
					},
					{
						ID:        "demo-q9",
						Type:      FillBlank,
						Prompt:    "Nosotros ___ amigos. (We are friends.)",
						AnswerKey: AnswerKey{"somos"},
					},
					{
						ID:        "demo-q10",
						Type:      FillBlank,
						Prompt:    "¿Cómo ___ llamas? (What is your name?)",
						AnswerKey: AnswerKey{"te"},
					},
				},
			},
		},
	}
}
