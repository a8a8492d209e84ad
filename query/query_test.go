package query

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCategories(t *testing.T) {
	Convey("测试分类菜单", t, func() {
		So(ListCategories(), ShouldResemble, []Category{
			CategorySetOperations, CategorySetMembership, CategorySetComparison,
			CategoryWith, CategoryAggregate, CategoryOLAP, CategoryCustom,
		})

		Convey("每个分类的模板数量固定", func() {
			counts := map[Category]int{
				CategorySetOperations: 4,
				CategorySetMembership: 5,
				CategorySetComparison: 7,
				CategoryWith:          5,
				CategoryAggregate:     8,
				CategoryOLAP:          12,
				CategoryCustom:        0,
			}
			total := 0
			for c, n := range counts {
				defs, err := ListQueries(c)
				So(err, ShouldBeNil)
				So(defs, ShouldHaveLength, n)
				total += n
			}
			So(All(), ShouldHaveLength, total)
		})

		Convey("分类说明", func() {
			for _, c := range ListCategories() {
				desc, err := Describe(c)
				So(err, ShouldBeNil)
				So(desc, ShouldNotBeEmpty)
			}
			_, err := Describe("Please select a category")
			So(errors.Is(err, ErrUnknownCategory), ShouldBeTrue)
		})

		Convey("ListQueries 返回副本", func() {
			defs, _ := ListQueries(CategoryOLAP)
			defs[0] = nil
			again, _ := ListQueries(CategoryOLAP)
			So(again[0], ShouldNotBeNil)
		})

		Convey("未知分类", func() {
			_, err := ListQueries("Cube")
			So(errors.Is(err, ErrUnknownCategory), ShouldBeTrue)
		})
	})
}

func TestFind(t *testing.T) {
	Convey("测试模板查找", t, func() {
		Convey("按标题查找", func() {
			def, err := Find(CategorySetMembership, "List Nurses Who Have Worked in ICU Rooms")
			So(err, ShouldBeNil)
			So(def.Columns, ShouldResemble, []string{"NurseID", "FirstName", "LastName"})
			So(def.SQL, ShouldContainSubstring, "r.RoomType = 'ICU'")
		})

		Convey("相邻标题互不影响", func() {
			a, err := Find(CategorySetComparison, "Identify Patients Who Have Consulted Multiple Specialists")
			So(err, ShouldBeNil)
			b, err := Find(CategorySetComparison, "Compare Appointment Schedules to Identify Overlaps")
			So(err, ShouldBeNil)
			So(a.Columns, ShouldResemble, []string{"PatientID", "DepartmentCount"})
			So(b.Columns, ShouldResemble, []string{"DoctorID", "AppointmentDate", "AppointmentTime"})
		})

		Convey("LAG 查询声明的是上一次付款", func() {
			def, err := Find(CategoryOLAP, "Calculate the previous payment amount for each patient")
			So(err, ShouldBeNil)
			So(def.Columns[len(def.Columns)-1], ShouldEqual, "PreviousPaymentAmount")
			So(def.SQL, ShouldContainSubstring, "LAG(")
		})

		Convey("累计求和", func() {
			def, err := Find(CategoryOLAP, "Total Billing for Each Patient (Cumulative Sum)")
			So(err, ShouldBeNil)
			So(def.Columns, ShouldResemble, []string{"PatientID", "PaymentDate", "TotalAmount", "CumulativeTotalBilling"})
		})

		Convey("标题在其他分类下查不到", func() {
			_, err := Find(CategoryOLAP, "List Nurses Who Have Worked in ICU Rooms")
			So(errors.Is(err, ErrUnknownQuery), ShouldBeTrue)

			_, err = Find(CategorySetMembership, "-- List Nurses Who Have Worked in ICU Rooms")
			So(errors.Is(err, ErrUnknownQuery), ShouldBeTrue)

			_, err = Find("Nope", "anything")
			So(errors.Is(err, ErrUnknownCategory), ShouldBeTrue)
		})
	})
}

func TestDefinitions(t *testing.T) {
	Convey("测试模板内容", t, func() {
		for _, def := range All() {
			So(def.Label, ShouldNotBeEmpty)
			So(def.Columns, ShouldNotBeEmpty)
			So(strings.HasSuffix(strings.TrimSpace(def.SQL), ";"), ShouldBeFalse)

			seen := map[string]bool{}
			for _, col := range def.Columns {
				So(seen[col], ShouldBeFalse)
				seen[col] = true
			}

			got, err := Lookup(def.ID)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, def)
			So(def.ID, ShouldEqual, Slug(def.Category, def.Label))
		}

		_, err := Lookup("olap/does-not-exist")
		So(errors.Is(err, ErrUnknownQuery), ShouldBeTrue)
	})
}

func TestSlug(t *testing.T) {
	Convey("测试 ID 生成", t, func() {
		So(Slug(CategoryOLAP, "Total billing per branch with subtotals"), ShouldEqual,
			"olap/total-billing-per-branch-with-subtotals")
		So(Slug(CategoryWith, "Total Revenue per Branch and Department"), ShouldEqual,
			"subqueries-using-the-with-clause/total-revenue-per-branch-and-department")
		So(Slug(CategoryOLAP, "Total Billing for Each Patient (Cumulative Sum)"), ShouldEqual,
			"olap/total-billing-for-each-patient-cumulative-sum")
		So(Slug(CategorySetOperations, "  -- Leading dashes"), ShouldEqual, "set-operations/leading-dashes")
	})
}
