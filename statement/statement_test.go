package statement

import (
	"strings"
	"testing"

	"github.com/hatlonely/hms/catalog"
	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func mustRecord(entity string, form map[string]string) catalog.Record {
	record, err := catalog.NewRecord(entity, form)
	if err != nil {
		panic(err)
	}
	return record
}

func TestBuildInsertAndUpdate(t *testing.T) {
	Convey("测试写语句构建", t, func() {
		schema, err := catalog.Lookup("Nurse")
		So(err, ShouldBeNil)
		record := mustRecord("Nurse", map[string]string{
			"FirstName": "ada", "LastName": "lovelace", "Phone": "555-222-3333",
			"Email": "ada@example.com", "Branch_ID": "2",
		})

		Convey("INSERT 按字段顺序绑定参数", func() {
			sql, params, err := BuildInsert(schema, record)
			So(err, ShouldBeNil)
			So(sql, ShouldEqual, "INSERT INTO Nurse (FirstName, LastName, Phone, Email, Branch_ID) VALUES (?, ?, ?, ?, ?)")
			So(params, ShouldResemble, []any{"Ada", "Lovelace", "555-222-3333", "ada@example.com", int64(2)})
		})

		Convey("UPDATE 最后一个参数是主键", func() {
			sql, params, err := BuildUpdate(schema, 11, record)
			So(err, ShouldBeNil)
			So(sql, ShouldEqual, "UPDATE Nurse SET FirstName = ?, LastName = ?, Phone = ?, Email = ?, Branch_ID = ? WHERE NurseID = ?")
			So(len(params), ShouldEqual, 6)
			So(params[5], ShouldEqual, 11)
		})

		Convey("记录实体与表不一致", func() {
			other, _ := catalog.Lookup("Doctor")
			_, _, err := BuildInsert(other, record)
			So(err, ShouldNotBeNil)
			_, _, err = BuildUpdate(other, 1, record)
			So(err, ShouldNotBeNil)
		})

		Convey("空记录", func() {
			_, _, err := BuildInsert(schema, nil)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestPlaceholderCounts(t *testing.T) {
	Convey("占位符数量与字段数一致", t, func() {
		for _, name := range catalog.Entities() {
			schema, err := catalog.Lookup(name)
			So(err, ShouldBeNil)
			record, err := catalog.New(name)
			So(err, ShouldBeNil)

			insert, params, err := BuildInsert(schema, record)
			So(err, ShouldBeNil)
			So(strings.Count(insert, "?"), ShouldEqual, len(schema.Fields))
			So(len(params), ShouldEqual, len(schema.Fields))

			update, params, err := BuildUpdate(schema, 1, record)
			So(err, ShouldBeNil)
			So(strings.Count(update, "?"), ShouldEqual, len(schema.Fields)+1)
			So(len(params), ShouldEqual, len(schema.Fields)+1)
		}
	})
}

func TestBuildDelete(t *testing.T) {
	Convey("测试删除语句", t, func() {
		sql, params, err := BuildDelete("Patient", 7)
		So(err, ShouldBeNil)
		So(sql, ShouldEqual, "DELETE FROM Patient WHERE PatientID = ?")
		So(params, ShouldResemble, []any{7})

		sql, _, err = BuildDelete("Hospital_Branch", 1)
		So(err, ShouldBeNil)
		So(sql, ShouldEqual, "DELETE FROM Hospital_Branch WHERE Branch_ID = ?")

		_, _, err = BuildDelete("Patient; DROP TABLE Patient", 7)
		So(errors.Is(err, catalog.ErrUnknownEntity), ShouldBeTrue)
	})
}

func TestBuildSelect(t *testing.T) {
	Convey("测试查询语句", t, func() {
		Convey("按主键查询", func() {
			sql, params, err := BuildSelectByKey("Room", "RoomID", 3)
			So(err, ShouldBeNil)
			So(sql, ShouldEqual, "SELECT * FROM Room WHERE RoomID = ?")
			So(params, ShouldResemble, []any{3})
		})

		Convey("列名必须属于实体", func() {
			_, _, err := BuildSelectByKey("Room", "1=1 OR RoomID", 3)
			So(errors.Is(err, catalog.ErrUnknownColumn), ShouldBeTrue)
			_, _, err = BuildSelectByKey("Ward", "RoomID", 3)
			So(errors.Is(err, catalog.ErrUnknownEntity), ShouldBeTrue)
		})

		Convey("全表查询幂等", func() {
			first, err := BuildSelectAll("Room")
			So(err, ShouldBeNil)
			second, err := BuildSelectAll("Room")
			So(err, ShouldBeNil)
			So(first, ShouldEqual, "SELECT * FROM Room")
			So(second, ShouldEqual, first)
		})

		Convey("全表查询拒绝目录外的表名", func() {
			_, err := BuildSelectAll("Room UNION SELECT * FROM mysql.user")
			So(errors.Is(err, catalog.ErrUnknownEntity), ShouldBeTrue)
		})
	})
}

func TestBuildCreateTable(t *testing.T) {
	Convey("测试建表语句", t, func() {
		schema, _ := catalog.Lookup("MedicalRecord")

		Convey("sqlite3", func() {
			ddl, err := BuildCreateTable(schema, DialectSQLite)
			So(err, ShouldBeNil)
			So(ddl, ShouldStartWith, "CREATE TABLE IF NOT EXISTS MedicalRecord (")
			So(ddl, ShouldContainSubstring, "RecordID INTEGER PRIMARY KEY AUTOINCREMENT")
			So(ddl, ShouldContainSubstring, "Diagnosis TEXT NOT NULL")
			So(ddl, ShouldContainSubstring, "DateOfEntry TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP")
			So(ddl, ShouldContainSubstring, "FOREIGN KEY (DoctorID) REFERENCES Doctor(DoctorID)")
		})

		Convey("mysql", func() {
			billing, _ := catalog.Lookup("Billing")
			ddl, err := BuildCreateTable(billing, DialectMySQL)
			So(err, ShouldBeNil)
			So(ddl, ShouldContainSubstring, "BillID INT AUTO_INCREMENT PRIMARY KEY")
			So(ddl, ShouldContainSubstring, "TotalAmount DECIMAL(10,2) NOT NULL")
			So(ddl, ShouldContainSubstring, "PaymentMethod VARCHAR(20) NOT NULL")
			So(ddl, ShouldContainSubstring, "UNIQUE (PatientID, PaymentDate)")
		})

		Convey("可空列没有 NOT NULL", func() {
			stay, _ := catalog.Lookup("HospitalStay")
			ddl, _ := BuildCreateTable(stay, DialectMySQL)
			So(ddl, ShouldContainSubstring, "DischargeDate DATE,")
		})

		Convey("不支持的方言", func() {
			_, err := BuildCreateTable(schema, "postgres")
			So(err, ShouldNotBeNil)
		})
	})
}
