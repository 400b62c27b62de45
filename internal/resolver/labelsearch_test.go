package resolver

import "testing"

func TestSearchLabels_InlineAdjacency(t *testing.T) {
	page := mustPage(t, `<html><body>
		<p>Датум на објава: 10.01.2024</p>
	</body></html>`, "")

	got := searchLabels(page, []string{"Датум на објава"}, nil)
	if got != "10.01.2024" {
		t.Errorf("searchLabels() = %q, want %q", got, "10.01.2024")
	}
}

func TestSearchLabels_TableCellPairing(t *testing.T) {
	page := mustPage(t, `<html><body><table>
		<tr><th>Статус</th><th>Отворен</th></tr>
		<tr><td>Датум на објава</td><td>10.01.2024</td></tr>
	</table></body></html>`, "")

	if got := searchLabels(page, []string{"Датум на објава"}, nil); got != "10.01.2024" {
		t.Errorf("searchLabels() = %q, want %q", got, "10.01.2024")
	}
	if got := searchLabels(page, []string{"Статус"}, nil); got != "Отворен" {
		t.Errorf("searchLabels() = %q, want %q", got, "Отворен")
	}
}

func TestSearchLabels_SiblingBlockPairing(t *testing.T) {
	page := mustPage(t, `<html><body>
		<div class="row">
			<div>Носител на набавката</div>
			<div>ДОО Николет Компани</div>
		</div>
	</body></html>`, "")

	got := searchLabels(page, []string{"Носител на набавката"}, nil)
	if got != "ДОО Николет Компани" {
		t.Errorf("searchLabels() = %q, want %q", got, "ДОО Николет Компани")
	}
}

func TestSearchLabels_PrimaryBeforeSecondary(t *testing.T) {
	page := mustPage(t, `<html><body>
		<p>Краен рок: 01.04.2024</p>
		<p>Deadline: 02.04.2024</p>
	</body></html>`, "")

	got := searchLabels(page, []string{"Краен рок"}, []string{"Deadline"})
	if got != "01.04.2024" {
		t.Errorf("searchLabels() = %q, want primary-language hit %q", got, "01.04.2024")
	}

	// with the primary label missing, the secondary language serves
	got = searchLabels(page, []string{"Рок за поднесување"}, []string{"Deadline"})
	if got != "02.04.2024" {
		t.Errorf("searchLabels() = %q, want secondary-language hit %q", got, "02.04.2024")
	}
}

func TestSearchLabels_NoMatch(t *testing.T) {
	page := mustPage(t, `<html><body><p>нема ознаки тука</p></body></html>`, "")
	if got := searchLabels(page, []string{"Краен рок"}, []string{"Deadline"}); got != "" {
		t.Errorf("searchLabels() = %q, want empty", got)
	}
}
