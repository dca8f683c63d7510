package shimeji_test

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pixelfinder/shimejifinder/archivereader"
	"github.com/pixelfinder/shimejifinder/shimeji"
)

// buildZip writes entries in sorted name order, so tests that depend on
// which entry comes first (the thumbnail sink) see a fixed archive order.
func buildZip(files map[string][]byte) []byte {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		Expect(err).ToNot(HaveOccurred())
		_, err = w.Write(files[name])
		Expect(err).ToNot(HaveOccurred())
	}
	Expect(zw.Close()).To(Succeed())
	return buf.Bytes()
}

func sourceFromBytes(data []byte) archivereader.Source {
	return archivereader.FuncSource(func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
}

const monolithicActionsXML = `<Mascot><Actions><Action Name="Stand"><Animation>
  <Pose Image="/shime1.png" Duration="1"/>
  <Pose Image="/shime2.png" Duration="1"/>
</Animation></Action></Actions></Mascot>`

func readFile(path string) string {
	b, err := os.ReadFile(path)
	Expect(err).ToNot(HaveOccurred())
	return string(b)
}

var _ = Describe("end-to-end scenarios", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "shimejifinder-e2e-*")
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(dir)).To(Succeed())
	})

	It("S1: extracts a single monolithic mascot", func() {
		data := buildZip(map[string][]byte{
			"MyPet/conf/actions.xml":   []byte(monolithicActionsXML),
			"MyPet/conf/behaviors.xml": []byte("<Mascot></Mascot>"),
			"MyPet/img/shime1.png":     []byte("one"),
			"MyPet/img/shime2.png":     []byte("two"),
		})
		archive, err := shimeji.Analyze(sourceFromBytes(data))
		Expect(err).ToNot(HaveOccurred())
		Expect(archive.Shimejis()).To(Equal([]string{"MyPet"}))

		Expect(archive.Extract(dir)).To(Succeed())
		Expect(readFile(filepath.Join(dir, "MyPet.mascot", "img", "shime1.png"))).To(Equal("one"))
		Expect(readFile(filepath.Join(dir, "MyPet.mascot", "img", "shime2.png"))).To(Equal("two"))
		Expect(readFile(filepath.Join(dir, "MyPet.mascot", "actions.xml"))).To(Equal(monolithicActionsXML))
		Expect(readFile(filepath.Join(dir, "MyPet.mascot", "behaviors.xml"))).To(Equal("<Mascot></Mascot>"))
	})

	It("S2: splits a Shimeji-EE bundle into Cat and Dog, ignoring unused", func() {
		data := buildZip(map[string][]byte{
			"conf/actions.xml":     []byte(monolithicActionsXML),
			"conf/behaviors.xml":   []byte("<Mascot></Mascot>"),
			"img/Cat/shime1.png":    []byte("cat1"),
			"img/Cat/shime2.png":    []byte("cat2"),
			"img/Dog/shime1.png":    []byte("dog1"),
			"img/Dog/shime2.png":    []byte("dog2"),
			"img/unused/shime1.png": []byte("nope"),
		})
		archive, err := shimeji.Analyze(sourceFromBytes(data))
		Expect(err).ToNot(HaveOccurred())
		Expect(archive.Shimejis()).To(Equal([]string{"Cat", "Dog"}))

		Expect(archive.Extract(dir)).To(Succeed())
		Expect(readFile(filepath.Join(dir, "Cat.mascot", "img", "shime1.png"))).To(Equal("cat1"))
		Expect(readFile(filepath.Join(dir, "Dog.mascot", "img", "shime1.png"))).To(Equal("dog1"))
		_, err = os.Stat(filepath.Join(dir, "unused.mascot"))
		Expect(os.IsNotExist(err)).To(BeTrue())
	})

	It("S3: registers an orphaned 46-file shimeN.png run with fallback XMLs", func() {
		files := map[string][]byte{}
		for i := 1; i <= 46; i++ {
			files[fmt.Sprintf("Anon/shime%d.png", i)] = []byte{byte(i)}
		}
		data := buildZip(files)

		archive, err := shimeji.Analyze(sourceFromBytes(data))
		Expect(err).ToNot(HaveOccurred())
		Expect(archive.Shimejis()).To(Equal([]string{"Anon"}))

		Expect(archive.Extract(dir)).To(Succeed())
		Expect(readFile(filepath.Join(dir, "Anon.mascot", "img", "shime1.png"))).To(Equal(string([]byte{1})))
		Expect(readFile(filepath.Join(dir, "Anon.mascot", "actions.xml"))).ToNot(BeEmpty())
		Expect(readFile(filepath.Join(dir, "Anon.mascot", "behaviors.xml"))).ToNot(BeEmpty())
	})

	It("S4: recognizes the Japanese actions/behaviors synonyms and Pose attributes", func() {
		japaneseActions := `<マスコット><動作群><動作 名前="Stand"><ポーズ 画像="/shime1.png"/></動作></動作群></マスコット>`
		data := buildZip(map[string][]byte{
			"Neko/動作.xml":       []byte(japaneseActions),
			"Neko/行動.xml":       []byte("<マスコット></マスコット>"),
			"Neko/img/shime1.png": []byte("neko"),
		})
		archive, err := shimeji.Analyze(sourceFromBytes(data))
		Expect(err).ToNot(HaveOccurred())
		Expect(archive.Shimejis()).To(Equal([]string{"Neko"}))
	})

	It("S5: thumbnail mode writes a single {mascot}.png and no .mascot directory", func() {
		data := buildZip(map[string][]byte{
			"MyPet/conf/actions.xml":   []byte(monolithicActionsXML),
			"MyPet/conf/behaviors.xml": []byte("<Mascot></Mascot>"),
			"MyPet/img/shime1.png":     []byte("one"),
			"MyPet/img/shime2.png":     []byte("two"),
		})
		archive, err := shimeji.Analyze(sourceFromBytes(data), shimeji.AnalyzeConfig{OnlyThumbnails: true})
		Expect(err).ToNot(HaveOccurred())

		Expect(archive.Extract(dir)).To(Succeed())
		Expect(readFile(filepath.Join(dir, "MyPet.png"))).To(Equal("one"))
		_, err = os.Stat(filepath.Join(dir, "MyPet.mascot"))
		Expect(os.IsNotExist(err)).To(BeTrue())
	})

	It("AnalyzeFile derives the mascot-name fallback from the archive's filename", func() {
		data := buildZip(map[string][]byte{
			"actions.xml":    []byte(monolithicActionsXML),
			"behaviors.xml":  []byte("<Mascot></Mascot>"),
			"img/shime1.png": []byte("one"),
			"img/shime2.png": []byte("two"),
		})
		path := filepath.Join(dir, "Luna.zip")
		Expect(os.WriteFile(path, data, 0o644)).To(Succeed())

		archive, err := shimeji.AnalyzeFile(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(archive.Shimejis()).To(Equal([]string{"Luna"}))
	})

	It("S6: recurses into a nested Cat.zip but never into src.zip", func() {
		inner := buildZip(map[string][]byte{
			"Cat/conf/actions.xml":   []byte(monolithicActionsXML),
			"Cat/conf/behaviors.xml": []byte("<Mascot></Mascot>"),
			"Cat/img/shime1.png":     []byte("cat"),
			"Cat/img/shime2.png":     []byte("cat2"),
		})
		outer := buildZip(map[string][]byte{
			"Cat.zip": inner,
			"src.zip": []byte("not a real archive, never opened"),
		})

		archive, err := shimeji.Analyze(sourceFromBytes(outer))
		Expect(err).ToNot(HaveOccurred())
		Expect(archive.Shimejis()).To(Equal([]string{"Cat"}))

		Expect(archive.Extract(dir)).To(Succeed())
		Expect(readFile(filepath.Join(dir, "Cat.mascot", "img", "shime1.png"))).To(Equal("cat"))
		_, err = os.Stat(filepath.Join(dir, "src.mascot"))
		Expect(os.IsNotExist(err)).To(BeTrue())
	})
})
