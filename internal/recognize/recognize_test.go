package recognize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/quizsense/internal/answer"
	"github.com/mind-engage/quizsense/internal/answerkey"
)

const (
	nestedLoopCode = "for i in range(len(tab)):\n    for j in range(len(tab[i])):\n        print(tab[i][j])"
	peopleCode     = "base = {\"Maroc\": {\"pays\": \"Maroc\", \"age\": 21}}"
)

// first runs the default order and returns the first recognizer that fires.
func first(t *testing.T, key *answerkey.Key, q answer.Question) (string, answer.Answer) {
	t.Helper()
	for _, r := range DefaultOrder(key) {
		if a, ok := r.Recognize(q); ok {
			return r.Name(), a
		}
	}
	return "", answer.None()
}

func TestRecognizers(t *testing.T) {
	tests := []struct {
		name string
		q    answer.Question
		src  string
		want string
	}{
		{"country", answer.Question{Text: "Quelle instruction renvoie le pays de Maroc ?", Code: peopleCode}, NameDictCountry, `base["Maroc"]["pays"]`},
		{"age", answer.Question{Text: "Quelle instruction renvoie l'âge de Karim ?", Code: peopleCode}, NameDictAge, `base["Karim"]["age"]`},
		{"age update", answer.Question{Text: "Quelle instruction permet de corriger l'âge de Karim par la valeur 30 ?", Code: peopleCode}, NameDictAgeUpdate, `base["Karim"]["age"] = 30`},
		{
			"comprehension threshold",
			answer.Question{
				Text: "Compléter la compréhension pour obtenir les personnes de moins de 30 ans du tableau personnes",
				Code: "for p in personnes:\n    print(p[\"nom\"])",
			},
			NameComprehension, `for p in personnes if p["age"] < 30`,
		},
		{
			"comprehension role",
			answer.Question{Text: "Compléter la compréhension : garder ceux dont la fonction est professeur dans la table staff"},
			NameComprehension, `for x in staff if x["fonction"] == "professeur"`,
		},
		{
			"comprehension table from code",
			answer.Question{
				Text: "Complétez la compréhension pour garder les plus de 18 ans",
				Code: "eleves = [{\"age\": 17}, {\"age\": 19}]\nmajeurs = [e for e in eleves]",
			},
			NameComprehension, `for e in eleves if e["age"] > 18`,
		},
		{"inline list", answer.Question{Text: "Que renvoie [[1, 2], [3, 4]][1][0] ?"}, NameListIndex, "3"},
		{"inline list of strings", answer.Question{Text: "Que renvoie [['a', 'b'], ['c', 'd']][0][-1] ?"}, NameListIndex, "b"},
		{"named list", answer.Question{Text: "Que renvoie tab[1][-1] ?", Code: "tab = [[1, 2],\n       [3, 4]]"}, NameListIndex, "4"},
		{"inline list, code table wins", answer.Question{Text: "Que renvoie [[1, 2], [3, 4]][1][0] ?", Code: "t = [[5, 6],\n     [7, 8]]"}, NameListIndex, "7"},
		{"inline list, code without table", answer.Question{Text: "Que renvoie [[1, 2], [3, 4]][0][1] ?", Code: "x = [1, 2]"}, NameListIndex, "2"},
		{
			"fstring",
			answer.Question{Text: `Donner la chaîne de caractères formatée (f-string) générant ce résultat : "Bonjour Salsabil !" sachant que prenom = "Salsabil" ?`},
			NameFString, `f"Bonjour {prenom} !"`,
		},
		{"fstring defaults", answer.Question{Text: "Écrire une fstring qui salue l'utilisateur"}, NameFString, `f"Bonjour {nom} !"`},
		{"replace", answer.Question{Text: `Que renvoie "banane".replace("a", "o") ?`}, NameReplace, "bonone"},
		{"replace empty search", answer.Question{Text: `Que renvoie "abc".replace("", "x") ?`}, NameReplace, "abc"},
		{"slice", answer.Question{Text: `Que renvoie "Bonjour"[0:3] ?`}, NameSlice, "Bon"},
		{"slice reversed", answer.Question{Text: `Que renvoie "Bonjour"[::-1] ?`}, NameSlice, "ruojnoB"},
		{"slice negative", answer.Question{Text: `Que renvoie 'Python'[-3:] ?`}, NameSlice, "hon"},
		{"index", answer.Question{Text: `Que renvoie "Bonjour"[2] ?`}, NameIndex, "n"},
		{"index negative", answer.Question{Text: `Que renvoie "Bonjour"[-1] ?`}, NameIndex, "r"},
		{"index out of range", answer.Question{Text: `Que renvoie "abc"[7] ?`}, NameIndex, ""},
		{
			"assignment",
			answer.Question{Text: `Écrire l'instruction en affectant à la variable ville la chaîne de caractères "Paris"`},
			NameAssignment, `ville = "Paris"`,
		},
		{"len", answer.Question{Text: `Sachant que mot = "été", que renvoie l'instruction len(mot) ?`}, NameLen, "3"},
		{
			"dict reader",
			answer.Question{
				Text: "Quel est le type de la variable lignes ?",
				Code: "import csv\nwith open('f.csv') as f:\n    lignes = list(csv.DictReader(f, delimiter=';'))",
			},
			NameVariableType, "une liste de dictionnaires",
		},
		{
			"reader",
			answer.Question{
				Text: "Quel est le type de la variable lignes ?",
				Code: "import csv\nwith open('f.csv') as f:\n    lignes = list(csv.reader(f))",
			},
			NameVariableType, "une liste de listes",
		},
		{
			"reader elsewhere",
			answer.Question{
				Text: "Quel est le type de la variable data ?",
				Code: "lecteur = csv.reader(f)\ndata = []\nfor l in lecteur:\n    data.append(l)",
			},
			NameVariableType, "une liste de listes",
		},
		{
			"sort ascending",
			answer.Question{Text: "Quelle instruction permet de trier la liste par ordre croissant d'âge ?", Code: "def age(p):\n    return p['age']"},
			NameSortKey, "sort(key=age)",
		},
		{
			"sort descending",
			answer.Question{Text: "Quelle instruction permet de trier la liste par ordre décroissant d'âge ?", Code: "def age(p): return p['age']"},
			NameSortKey, "sort(key=age, reverse=True)",
		},
		{"condition", answer.Question{Text: "Que renvoie l'expression 3 < 5 and 2 == 2 ?"}, NameCondition, "True"},
		{"condition false", answer.Question{Text: "Quelle est la valeur de l'expression : `7 // 2 == 4` ?"}, NameCondition, "False"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src, got := first(t, nil, tc.q)
			assert.Equal(t, tc.src, src)
			assert.Equal(t, answer.KindSingle, got.Kind())
			assert.Equal(t, tc.want, got.Value())
		})
	}
}

func TestNoMatch(t *testing.T) {
	for _, q := range []answer.Question{
		{Text: "Quelle instruction renvoie le pays de Maroc ?"}, // needs code
		{Text: "Quel est le type de la variable lignes ?"},
		{Text: `Sachant que mot = "été", que renvoie l'instruction len(x) ?`},
		{Text: "Que renvoie l'expression __import__('os') ?"},
		{Text: "Que renvoie l'expression 1 + ?"},
		{Text: "Que renvoie [[1, 2], [3, 4]][5][0] ?"},
		{Text: "Que renvoie [[1, 2], [3, 4][1][0] ?"},
		{Text: "Que renvoie tab[0][0] ?", Code: "print(tab)"},
		{Text: "Compléter la compréhension"},
		{Text: "Trier la liste", Code: "liste = [3, 1, 2]"},
		{Text: "Bonjour tout le monde"},
		{Text: ""},
	} {
		src, got := first(t, nil, q)
		assert.Empty(t, src, q.Text)
		assert.True(t, got.IsNone(), q.Text)
	}
}

func TestNestedLoop(t *testing.T) {
	q := answer.Question{Text: "Quelle expression affiche chaque valeur ?", Code: nestedLoopCode}
	src, got := first(t, nil, q)
	assert.Equal(t, NameNestedLoop, src)
	assert.Equal(t, answer.KindMultiple, got.Kind())
	assert.Equal(t, []string{"tab[i][j]"}, got.Values())

	// the inner bound must index tab with the outer variable
	q.Code = "for i in range(len(tab)):\n    for j in range(len(tab[k])):\n        pass"
	_, ok := NestedLoop{}.Recognize(q)
	assert.False(t, ok)
}

func TestDefaultOrder(t *testing.T) {
	assert.Equal(t, []string{
		NameCodeVariant, NameNestedLoop, NameDictCountry, NameDictAge, NameDictAgeUpdate,
		NameComprehension, NameListIndex, NameFString, NameReplace, NameSlice, NameIndex,
		NameAssignment, NameLen, NameVariableType, NameSortKey, NameCondition,
	}, Names(DefaultOrder(nil)))
}

func TestSliceBeforeIndex(t *testing.T) {
	q := answer.Question{Text: `Que renvoie "Bonjour"[1:3] ?`}
	_, ok := Index{}.Recognize(q)
	assert.False(t, ok)

	// a lone subscript is not a slice
	q = answer.Question{Text: `Que renvoie "Bonjour"[3] ?`}
	_, ok = Slice{}.Recognize(q)
	assert.False(t, ok)
}

func TestSliceStepZero(t *testing.T) {
	// step 0 yields an empty string instead of an error
	a, ok := Slice{}.Recognize(answer.Question{Text: `Que renvoie "Bonjour"[::0] ?`})
	require.True(t, ok)
	assert.Equal(t, "", a.Value())
}

func variantKey() *answerkey.Key {
	p := answerkey.MustCompilePattern
	return answerkey.New(nil, map[string][]answerkey.Variant{
		"Quelle instruction permet de lire le fichier": {
			{
				Pattern: p(`import\s+csv`, ""),
				SubPatterns: []answerkey.SubPattern{
					{Pattern: p(`csv\.DictReader`, ""), Answer: "csv.DictReader(f, delimiter=';')"},
					{Pattern: p(`csv\.reader`, ""), Answer: "csv.reader(f, delimiter=';')"},
				},
			},
			{Pattern: p(`OPEN\(`, "i"), Answer: "f.read()", HasAnswer: true},
		},
		"lire le fichier": {
			{Pattern: p(`.`, ""), Answer: "generic", HasAnswer: true},
		},
	})
}

func TestCodeVariant(t *testing.T) {
	key := variantKey()
	const text = "Quelle instruction permet de lire le fichier notes.csv ?"
	tests := []struct {
		name string
		q    answer.Question
		want string
	}{
		{"sub pattern", answer.Question{Text: text, Code: "import csv\nr = csv.reader(f)"}, "csv.reader(f, delimiter=';')"},
		{"first sub wins", answer.Question{Text: text, Code: "import csv\ncsv.DictReader(f)\ncsv.reader(f)"}, "csv.DictReader(f, delimiter=';')"},
		{"wording picks dicts", answer.Question{Text: text + " sous forme de dictionnaires", Code: "import csv"}, "csv.DictReader(f, delimiter=';')"},
		{"wording picks lists", answer.Question{Text: text + " sous forme de listes", Code: "import csv"}, "csv.reader(f, delimiter=';')"},
		{"simple variant", answer.Question{Text: text, Code: "f = open('notes.csv')"}, "f.read()"},
		{"shorter fragment", answer.Question{Text: "Comment lire le fichier ?", Code: "x"}, "generic"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, ok := CodeVariant{Key: key}.Recognize(tc.q)
			require.True(t, ok)
			assert.Equal(t, tc.want, a.Value())
		})
	}
}

func TestCodeVariantNoMatch(t *testing.T) {
	key := variantKey()
	for _, q := range []answer.Question{
		{Text: "Quelle instruction permet de lire le fichier ?"}, // no code
		{Text: "Quelle instruction permet de lire le fichier ?", Code: "import csv"},
		{Text: "Une autre question", Code: "import csv"},
	} {
		_, ok := CodeVariant{Key: key}.Recognize(q)
		assert.False(t, ok, q)
	}
	_, ok := CodeVariant{}.Recognize(answer.Question{Text: "lire le fichier", Code: "x"})
	assert.False(t, ok)
}

func TestCodeVariantSubstringLookup(t *testing.T) {
	// fragments match anywhere in the text, so unrelated wording that
	// happens to contain one still gets a variant answer
	a, ok := CodeVariant{Key: variantKey()}.Recognize(answer.Question{
		Text: "Pourquoi ne faut-il pas lire le fichier deux fois ?",
		Code: "print(1)",
	})
	require.True(t, ok)
	assert.Equal(t, "generic", a.Value())
}
