package admin

import (
	"context"
	"testing"

	"github.com/hatlonely/hms/audit"
	"github.com/hatlonely/hms/catalog"
	"github.com/hatlonely/hms/database"
	"github.com/hatlonely/hms/database/dbtest"
	"github.com/hatlonely/hms/log"
	"github.com/hatlonely/hms/query"
	"github.com/hatlonely/hms/uid"
	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func newService(t *testing.T, mode string) (*Service, *audit.Trail) {
	trail := audit.NewTrail(audit.NewMemoryStoreWithOptions(nil), uid.NewSnowflakeGenerator(&uid.SnowflakeOptions{MachineID: 1}))
	s, err := NewServiceWithOptions(&Options{Custom: PolicyOptions{Mode: mode}}, dbtest.NewSeeded(t), trail, log.Discard())
	if err != nil {
		t.Fatal(err)
	}
	return s, trail
}

func patientForm() map[string]string {
	return map[string]string{
		"FirstName":   "alice",
		"LastName":    "smith",
		"Gender":      "Female",
		"DateOfBirth": "1985-07-04",
		"Address":     "3 Elm St",
		"Phone":       "214-555-1003",
		"Email":       "alice@example.com",
		"Branch_ID":   "2",
	}
}

func TestService_CRUD(t *testing.T) {
	Convey("测试记录的增删改查", t, func() {
		s, _ := newService(t, "")
		ctx := context.Background()

		Convey("创建记录", func() {
			outcome, err := s.Create(ctx, "Patient", patientForm())
			So(err, ShouldBeNil)
			So(outcome.Message, ShouldEqual, "Record successfully created in the Patient table.")
			So(outcome.RowsAffected, ShouldEqual, int64(1))

			rs, err := s.ReadAll(ctx, "Patient")
			So(err, ShouldBeNil)
			So(rs.Rows, ShouldHaveLength, 3)

			row, err := s.Get(ctx, "Patient", "3")
			So(err, ShouldBeNil)
			So(row["FirstName"], ShouldEqual, "Alice")
		})

		Convey("单字段检查", func() {
			So(s.CheckField("Patient", "LastName", "Núñez"), ShouldBeNil)
			err := s.CheckField("Patient", "Email", "alice.example.com")
			So(errors.Is(err, catalog.ErrValidation), ShouldBeTrue)
			So(Message(err), ShouldStartWith, "Please correct the following fields: Email")
			So(errors.Is(s.CheckField("Patient", "Nickname", "x"), catalog.ErrUnknownColumn), ShouldBeTrue)
		})

		Convey("校验失败时不写库", func() {
			form := patientForm()
			form["Phone"] = "2145551003"
			_, err := s.Create(ctx, "Patient", form)
			So(errors.Is(err, catalog.ErrValidation), ShouldBeTrue)
			So(Message(err), ShouldStartWith, "Please correct the following fields: Phone")

			rs, err := s.ReadAll(ctx, "Patient")
			So(err, ShouldBeNil)
			So(rs.Rows, ShouldHaveLength, 2)
		})

		Convey("唯一键冲突", func() {
			form := patientForm()
			form["Phone"] = "214-555-1001"
			_, err := s.Create(ctx, "Patient", form)
			So(errors.Is(err, database.ErrDuplicateKey), ShouldBeTrue)
			So(Message(err), ShouldEqual, "Error: Duplicate entry. A record with the same unique field value already exists.")
		})

		Convey("外键不存在", func() {
			_, err := s.Create(ctx, "Appointment", map[string]string{
				"PatientID":       "99",
				"DoctorID":        "1",
				"AppointmentDate": "2024-03-01",
				"AppointmentTime": "09:00",
				"ReasonForVisit":  "Checkup",
				"Branch_ID":       "1",
			})
			So(errors.Is(err, database.ErrForeignKeyViolation), ShouldBeTrue)
			So(Message(err), ShouldStartWith, "Error: Foreign key constraint fails.")
		})

		Convey("未知实体", func() {
			_, err := s.Create(ctx, "Pharmacy", map[string]string{})
			So(errors.Is(err, catalog.ErrUnknownEntity), ShouldBeTrue)
			So(Message(err), ShouldEqual, "Invalid table selected or table does not have a defined primary key.")

			_, err = s.ReadAll(ctx, "Pharmacy")
			So(errors.Is(err, catalog.ErrUnknownEntity), ShouldBeTrue)
			_, err = s.Delete(ctx, "Pharmacy", "1")
			So(errors.Is(err, catalog.ErrUnknownEntity), ShouldBeTrue)
		})

		Convey("按主键读取", func() {
			row, err := s.Get(ctx, "Patient", "1")
			So(err, ShouldBeNil)
			So(row["FirstName"], ShouldEqual, "John")

			_, err = s.Get(ctx, "Patient", "99")
			So(errors.Is(err, database.ErrRecordNotFound), ShouldBeTrue)
			So(Message(err), ShouldEqual, "No record found with ID 99 in the Patient table.")

			_, err = s.Get(ctx, "Patient", "abc")
			So(errors.Is(err, catalog.ErrValidation), ShouldBeTrue)
			_, err = s.Get(ctx, "Patient", "0")
			So(errors.Is(err, catalog.ErrValidation), ShouldBeTrue)
		})

		Convey("更新记录", func() {
			form := map[string]string{
				"FirstName":   "John",
				"LastName":    "Doe",
				"Gender":      "Male",
				"DateOfBirth": "1980-01-01",
				"Address":     "9 Oak St",
				"Phone":       "214-555-1001",
				"Email":       "john@example.com",
				"Branch_ID":   "1",
			}
			outcome, err := s.Update(ctx, "Patient", "1", form)
			So(err, ShouldBeNil)
			So(outcome.Message, ShouldEqual, "Record in the Patient table successfully updated.")

			row, err := s.Get(ctx, "Patient", "1")
			So(err, ShouldBeNil)
			So(row["Address"], ShouldEqual, "9 Oak St")

			_, err = s.Update(ctx, "Patient", "99", form)
			So(errors.Is(err, database.ErrRecordNotFound), ShouldBeTrue)
		})

		Convey("删除记录", func() {
			outcome, err := s.Delete(ctx, "Billing", "3")
			So(err, ShouldBeNil)
			So(outcome.Message, ShouldEqual, "Record with ID 3 successfully deleted from the Billing table.")

			_, err = s.Delete(ctx, "Billing", "3")
			var nf *NotFoundError
			So(errors.As(err, &nf), ShouldBeTrue)
			So(nf.ID, ShouldEqual, int64(3))
			So(Message(err), ShouldEqual, "No record found with ID 3 in the Billing table.")
		})

		Convey("被引用的记录不能删除", func() {
			_, err := s.Delete(ctx, "Patient", "1")
			So(errors.Is(err, database.ErrForeignKeyViolation), ShouldBeTrue)
		})
	})
}

func TestService_Queries(t *testing.T) {
	Convey("测试预定义查询", t, func() {
		s, _ := newService(t, "")
		ctx := context.Background()

		So(s.Categories(), ShouldHaveLength, 7)
		defs, err := s.Queries(query.CategoryCustom)
		So(err, ShouldBeNil)
		So(defs, ShouldBeEmpty)

		rs, err := s.RunQuery(ctx, query.CategoryOLAP, "Total Billing for Each Patient (Cumulative Sum)")
		So(err, ShouldBeNil)
		So(rs.Rows, ShouldHaveLength, 3)

		rs, err = s.RunQueryByID(ctx, query.Slug(query.CategoryOLAP, "Total Billing for Each Patient (Cumulative Sum)"))
		So(err, ShouldBeNil)
		So(rs.Columns, ShouldResemble, []string{"PatientID", "PaymentDate", "TotalAmount", "CumulativeTotalBilling"})

		_, err = s.RunQuery(ctx, query.CategoryOLAP, "No Such Query")
		So(errors.Is(err, query.ErrUnknownQuery), ShouldBeTrue)
		So(Message(err), ShouldStartWith, "Invalid query selected")

		_, err = s.RunQueryByID(ctx, "olap/no-such-query")
		So(errors.Is(err, query.ErrUnknownQuery), ShouldBeTrue)
	})
}

func TestService_RunCustom(t *testing.T) {
	Convey("测试自定义 SQL", t, func() {
		s, trail := newService(t, "")
		ctx := context.Background()

		Convey("默认禁用并写审计", func() {
			So(s.Policy(), ShouldEqual, ModeDisabled)
			_, err := s.RunCustom(ctx, "alice", "SELECT * FROM Patient")
			So(errors.Is(err, ErrCustomQueryDenied), ShouldBeTrue)
			So(Message(err), ShouldStartWith, "Custom query denied (disabled)")

			entries, err := s.Audit(ctx, 10)
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 1)
			So(entries[0].Operator, ShouldEqual, "alice")
			So(entries[0].Mode, ShouldEqual, ModeDisabled)
			So(entries[0].Error, ShouldNotBeEmpty)
		})

		Convey("只读模式", func() {
			s.SetPolicy(PolicyOptions{Mode: ModeReadOnly})

			rs, err := s.RunCustom(ctx, "bob", "SELECT FirstName FROM Patient ORDER BY PatientID")
			So(err, ShouldBeNil)
			So(rs.Columns, ShouldResemble, []string{"FirstName"})
			So(rs.Rows, ShouldHaveLength, 2)

			_, err = s.RunCustom(ctx, "bob", "DELETE FROM Billing")
			So(errors.Is(err, ErrCustomQueryDenied), ShouldBeTrue)

			rs, err = s.ReadAll(ctx, "Billing")
			So(err, ShouldBeNil)
			So(rs.Rows, ShouldHaveLength, 3)

			entries, err := trail.Recent(ctx, 10)
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 2)
			So(entries[0].SQL, ShouldEqual, "DELETE FROM Billing")
			So(entries[1].Rows, ShouldEqual, int64(2))
			So(entries[1].Error, ShouldBeEmpty)
		})

		Convey("不受限模式原样执行", func() {
			s.SetPolicy(PolicyOptions{Mode: ModeUnrestricted})

			rs, err := s.RunCustom(ctx, "root", "UPDATE Room SET Availability = 0")
			So(err, ShouldBeNil)
			So(rs.RowsAffected, ShouldEqual, int64(3))

			_, err = s.RunCustom(ctx, "root", "SELECT * FROM Pharmacy")
			var de *database.DatabaseError
			So(errors.As(err, &de), ShouldBeTrue)
			So(Message(err), ShouldEqual, "Error: "+de.Message)

			entries, err := s.Audit(ctx, 1)
			So(err, ShouldBeNil)
			So(entries[0].Error, ShouldEqual, de.Message)
		})

		Convey("没有审计存储", func() {
			s, err := NewServiceWithOptions(&Options{Custom: PolicyOptions{Mode: ModeReadOnly}}, dbtest.NewSeeded(t), nil, nil)
			So(err, ShouldBeNil)
			_, err = s.RunCustom(ctx, "bob", "SELECT 1")
			So(err, ShouldBeNil)
			entries, err := s.Audit(ctx, 5)
			So(err, ShouldBeNil)
			So(entries, ShouldBeEmpty)
		})
	})
}

func TestNewServiceWithOptions(t *testing.T) {
	Convey("测试参数校验", t, func() {
		_, err := NewServiceWithOptions(nil, dbtest.New(t), nil, nil)
		So(err, ShouldNotBeNil)
		_, err = NewServiceWithOptions(&Options{}, nil, nil, nil)
		So(err, ShouldNotBeNil)
	})
}

func TestCheckCustom(t *testing.T) {
	Convey("测试自定义 SQL 策略", t, func() {
		for _, sql := range []string{
			"SELECT * FROM Patient",
			"  with a as (select 1) select * from a;",
			"(SELECT 1) UNION (SELECT 2)",
			"SELECT * FROM Patient WHERE LastName = 'DROP'",
			"SELECT 1 -- DROP TABLE Patient",
			"SELECT updated_at FROM t",
			"EXPLAIN SELECT 1",
			"SHOW TABLES",
			"-- note\nSELECT 1",
			"/* c */ SELECT 1",
			"SELECT 1 # trailing note",
		} {
			So(CheckCustom(ModeReadOnly, sql), ShouldBeNil)
		}

		for _, sql := range []string{
			"DELETE FROM Billing",
			"SELECT 1; DROP TABLE Patient",
			"WITH x AS (SELECT 1) DELETE FROM Billing",
			"SELECT * FROM Patient INTO OUTFILE '/tmp/p'",
			"CREATE TABLE t (a INT)",
			"",
			"SELECT * FROM Patient /*! INTO OUTFILE '/tmp/patients.csv' */",
			"SELECT 1 /*!; DROP TABLE Patient */",
			"SELECT /*+ SET_VAR(sql_mode='') */ 1",
			"SELECT 1 --1; DROP TABLE Patient",
			"-- note\nDELETE FROM Billing",
		} {
			So(errors.Is(CheckCustom(ModeReadOnly, sql), ErrCustomQueryDenied), ShouldBeTrue)
		}

		var pe *PolicyError
		So(errors.As(CheckCustom(ModeReadOnly, "SELECT 1 /*! , SLEEP(10) */"), &pe), ShouldBeTrue)
		So(pe.Reason, ShouldEqual, "executable comments are not allowed")

		So(CheckCustom(ModeUnrestricted, "DROP TABLE Patient"), ShouldBeNil)
		So(CheckCustom(ModeDisabled, "SELECT 1"), ShouldNotBeNil)
		So(CheckCustom("", "SELECT 1"), ShouldNotBeNil)
		So(CheckCustom("sudo", "SELECT 1"), ShouldNotBeNil)
	})
}

func TestMessage(t *testing.T) {
	Convey("测试错误提示文本", t, func() {
		So(Message(nil), ShouldEqual, "")
		So(Message(&database.DatabaseError{Message: "Table 'hms.x' doesn't exist"}), ShouldEqual, "Error: Table 'hms.x' doesn't exist")
		So(Message(database.ErrRecordNotFound), ShouldEqual, "No record found.")
		So(Message(errors.New("boom")), ShouldEqual, "Error: boom")
		So(Message(errors.Wrap(database.ErrColumnMismatch, "olap/x")), ShouldEqual, "Error: olap/x: column mismatch")
		So(Message(&catalog.ValidationError{Entity: "Room", Fields: []catalog.FieldError{
			{Field: "RoomNumber", Message: "is required"},
			{Field: "RoomType", Message: "must contain letters only"},
		}}), ShouldEqual, "Please correct the following fields: RoomNumber is required; RoomType must contain letters only.")
	})
}
